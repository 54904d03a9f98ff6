package resultparser

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/carbocation/nucleipq/overlay"
	"github.com/carbocation/pfx"
)

// Organs of the challenge's test set.
const (
	OrganLung     = "Lung"
	OrganKidney   = "Kidney"
	OrganBreast   = "Breast"
	OrganProstate = "Prostate"
)

// DefaultSeparator splits the path lines of a result dump.
const DefaultSeparator = `\`

// DefaultPatientPrefix is the length of the patient identifiers used in the
// challenge's supplementary material.
const DefaultPatientPrefix = 12

// Registry is the fixed vocabulary of a study: scored class names (in class
// index order), organs, and the organ of every patient. It is passed to the
// parser and aggregator explicitly so several studies can be parsed side by
// side.
type Registry struct {
	Classes         []string          `json:"classes"`
	Organs          []string          `json:"organs"`
	OrganPerPatient map[string]string `json:"organ_per_patient"`
	Separator       string            `json:"separator"`
	PatientPrefix   int               `json:"patient_prefix"`
}

// DefaultRegistry describes the nuclei challenge test set.
func DefaultRegistry() Registry {
	return Registry{
		Classes: []string{
			overlay.ClassEpithelial,
			overlay.ClassLymphocyte,
			overlay.ClassNeutrophil,
			overlay.ClassMacrophage,
		},
		Organs:    []string{OrganLung, OrganKidney, OrganBreast, OrganProstate},
		Separator: DefaultSeparator,

		PatientPrefix: DefaultPatientPrefix,
		OrganPerPatient: map[string]string{
			"TCGA-49-6743": OrganLung,
			"TCGA-50-6591": OrganLung,
			"TCGA-55-7570": OrganLung,
			"TCGA-55-7573": OrganLung,
			"TCGA-73-4662": OrganLung,
			"TCGA-78-7152": OrganLung,
			"TCGA-MP-A4T7": OrganLung,
			"TCGA-2Z-A9JG": OrganKidney,
			"TCGA-2Z-A9JN": OrganKidney,
			"TCGA-DW-7838": OrganKidney,
			"TCGA-DW-7963": OrganKidney,
			"TCGA-F9-A8NY": OrganKidney,
			"TCGA-IZ-A6M9": OrganKidney,
			"TCGA-MH-A55W": OrganKidney,
			"TCGA-A2-A04X": OrganBreast,
			"TCGA-A2-A0ES": OrganBreast,
			"TCGA-D8-A3Z6": OrganBreast,
			"TCGA-E2-A108": OrganBreast,
			"TCGA-EW-A6SB": OrganBreast,
			"TCGA-G9-6356": OrganProstate,
			"TCGA-G9-6367": OrganProstate,
			"TCGA-VP-A87E": OrganProstate,
			"TCGA-VP-A87H": OrganProstate,
			"TCGA-X4-A8KS": OrganProstate,
			"TCGA-YL-A9WL": OrganProstate,
		},
	}
}

// ParseRegistryFromPath reads a JSON registry. Omitted fields fall back to
// DefaultRegistry.
func ParseRegistryFromPath(path string) (Registry, error) {
	var out Registry

	f, err := os.Open(path)
	if err != nil {
		return out, pfx.Err(err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&out); err != nil {
		return out, pfx.Err(err)
	}

	defaults := DefaultRegistry()
	if len(out.Classes) == 0 {
		out.Classes = defaults.Classes
	}
	if len(out.Organs) == 0 {
		out.Organs = defaults.Organs
	}
	if out.OrganPerPatient == nil {
		out.OrganPerPatient = defaults.OrganPerPatient
	}
	if out.Separator == "" {
		out.Separator = defaults.Separator
	}
	if out.PatientPrefix == 0 {
		out.PatientPrefix = defaults.PatientPrefix
	}

	return out, out.Validate()
}

// Validate checks that the class list is non-empty without duplicates and that
// every patient maps to a declared organ. Patients are checked in sorted
// order.
func (r Registry) Validate() error {
	if len(r.Classes) == 0 {
		return fmt.Errorf("The registry declares no classes")
	}
	classes := make(map[string]struct{}, len(r.Classes))
	for _, c := range r.Classes {
		if _, exists := classes[c]; exists {
			return fmt.Errorf("Class %s is declared more than once in %v", c, r.Classes)
		}
		classes[c] = struct{}{}
	}

	organs := make(map[string]struct{}, len(r.Organs))
	for _, o := range r.Organs {
		organs[o] = struct{}{}
	}

	patients := make([]string, 0, len(r.OrganPerPatient))
	for patient := range r.OrganPerPatient {
		patients = append(patients, patient)
	}
	sort.Strings(patients)

	for _, patient := range patients {
		organ := r.OrganPerPatient[patient]
		if _, exists := organs[organ]; !exists {
			return fmt.Errorf("Patient %s maps to organ %s, which is not one of %v", patient, organ, r.Organs)
		}
	}

	return nil
}

// OrganFor looks up a patient by the first PatientPrefix characters of its
// identifier.
func (r Registry) OrganFor(patient string) (string, error) {
	key := patient
	if r.PatientPrefix > 0 && len(key) > r.PatientPrefix {
		key = key[:r.PatientPrefix]
	}

	organ, exists := r.OrganPerPatient[key]
	if !exists {
		return "", fmt.Errorf("%s (looked up as %s): %w", patient, key, ErrUnknownPatientOrgan)
	}

	return organ, nil
}

// ClassName returns the name of the class with the given index.
func (r Registry) ClassName(idx int) (string, error) {
	if idx < 0 || idx >= len(r.Classes) {
		return "", fmt.Errorf("Class index %d is out of range for %v", idx, r.Classes)
	}

	return r.Classes[idx], nil
}
