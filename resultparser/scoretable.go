package resultparser

// ScoreRecord is the score of one class of one image.
type ScoreRecord struct {
	Image string
	Class int
	Score float64
}

// ScoreTable maps patients to their score records, remembering the order in
// which patients and records were first seen.
type ScoreTable struct {
	patients []string
	records  map[string][]ScoreRecord
}

func NewScoreTable() *ScoreTable {
	return &ScoreTable{records: make(map[string][]ScoreRecord)}
}

// Append adds a record for the patient, creating its entry if needed.
func (t *ScoreTable) Append(patient string, rec ScoreRecord) {
	if _, exists := t.records[patient]; !exists {
		t.patients = append(t.patients, patient)
	}
	t.records[patient] = append(t.records[patient], rec)
}

// Patients lists patients in order of first appearance.
func (t *ScoreTable) Patients() []string {
	out := make([]string, len(t.patients))
	copy(out, t.patients)

	return out
}

// Records returns the patient's records in input order.
func (t *ScoreTable) Records(patient string) []ScoreRecord {
	return t.records[patient]
}

// Len is the total number of records.
func (t *ScoreTable) Len() int {
	n := 0
	for _, recs := range t.records {
		n += len(recs)
	}

	return n
}
