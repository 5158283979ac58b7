package face

// Emotion holds the per-emotion confidence scores reported for a face.
// Scores are observed in the 0-100 range. A nil field means the API did not
// report that emotion, which is not the same as a zero score.
type Emotion struct {
	Anger     *float64 `json:"anger,omitempty"`
	Disgust   *float64 `json:"disgust,omitempty"`
	Fear      *float64 `json:"fear,omitempty"`
	Happiness *float64 `json:"happiness,omitempty"`
	Neutral   *float64 `json:"neutral,omitempty"`
	Sadness   *float64 `json:"sadness,omitempty"`
	Surprise  *float64 `json:"surprise,omitempty"`
}

// Age is the estimated age of a face.
type Age struct {
	Value *int `json:"value,omitempty"`
}

// Gender is the estimated gender of a face.
type Gender struct {
	Value *string `json:"value,omitempty"`
}

// Ethnicity is the estimated ethnicity of a face.
type Ethnicity struct {
	Value *string `json:"value,omitempty"`
}

// Attributes is the demographic and emotion block attached to one face.
type Attributes struct {
	Age       *Age       `json:"age,omitempty"`
	Gender    *Gender    `json:"gender,omitempty"`
	Ethnicity *Ethnicity `json:"ethnicity,omitempty"`
	Emotion   *Emotion   `json:"emotion,omitempty"`
}

// Result is one detected face with its bounding box.
type Result struct {
	Top        *float64    `json:"top,omitempty"`
	Left       *float64    `json:"left,omitempty"`
	Width      *float64    `json:"width,omitempty"`
	Height     *float64    `json:"height,omitempty"`
	Attributes *Attributes `json:"attributes,omitempty"`
}

// Response is the decoded body of a face detection call. Entries keep the
// order the API returned them in and may be nil.
type Response struct {
	Faces []*Result `json:"faces"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
