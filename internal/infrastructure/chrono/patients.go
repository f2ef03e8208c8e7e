package chrono

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/narora21/chrono-patient-uploader/internal/core/domain"
)

// FindPatient searches the directory by last and first name, then narrows an
// ambiguous result set with the optional middle initial and date of birth.
// Each narrowing step only applies while more than one candidate remains and
// never filters the set down to zero.
func (c *Client) FindPatient(ctx context.Context, q domain.PatientQuery) (domain.PatientLookupResult, error) {
	params := url.Values{}
	params.Set("last_name", q.LastName)
	params.Set("first_name", q.FirstName)
	endpoint := c.baseURL + "/api/patients?" + params.Encode()

	var payload listPayload[domain.Patient]
	if err := c.getJSON(ctx, "patient lookup", endpoint, &payload); err != nil {
		return domain.PatientLookupResult{}, err
	}

	candidates := payload.items()
	candidates = narrowByMiddleInitial(candidates, q.MiddleInitial)
	candidates = narrowByExactName(candidates, q.LastName, q.FirstName)
	candidates = narrowByDOB(candidates, q.DOB)

	switch len(candidates) {
	case 0:
		return domain.PatientLookupResult{
			Status: domain.LookupNotFound,
			Detail: fmt.Sprintf("no patient matching %s, %s", q.LastName, q.FirstName),
		}, nil
	case 1:
		return domain.PatientLookupResult{
			Status:    domain.LookupFound,
			PatientID: candidates[0].ID,
			DoctorID:  candidates[0].DoctorID,
		}, nil
	default:
		return domain.PatientLookupResult{
			Status: domain.LookupMultipleMatches,
			Detail: domain.SummarizeCandidates(candidates),
		}, nil
	}
}

func narrowByMiddleInitial(candidates []domain.Patient, initial string) []domain.Patient {
	if initial == "" || len(candidates) <= 1 {
		return candidates
	}
	prefix := strings.ToLower(initial)
	var narrowed []domain.Patient
	for _, p := range candidates {
		if strings.HasPrefix(strings.ToLower(p.MiddleName), prefix) {
			narrowed = append(narrowed, p)
		}
	}
	if len(narrowed) == 0 {
		return candidates
	}
	return narrowed
}

func narrowByExactName(candidates []domain.Patient, lastName, firstName string) []domain.Patient {
	if len(candidates) <= 1 {
		return candidates
	}
	var narrowed []domain.Patient
	for _, p := range candidates {
		if strings.EqualFold(p.LastName, lastName) && strings.EqualFold(p.FirstName, firstName) {
			narrowed = append(narrowed, p)
		}
	}
	if len(narrowed) == 0 {
		return candidates
	}
	return narrowed
}

func narrowByDOB(candidates []domain.Patient, dob string) []domain.Patient {
	if dob == "" || len(candidates) <= 1 {
		return candidates
	}
	var narrowed []domain.Patient
	for _, p := range candidates {
		if p.DateOfBirth == dob {
			narrowed = append(narrowed, p)
		}
	}
	if len(narrowed) == 0 {
		return candidates
	}
	return narrowed
}
