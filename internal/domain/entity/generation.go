package entity

type GeneratorOutput struct {
	Description   string   `json:"description"`
	AnalysisSteps []string `json:"analysis_steps,omitempty"`
	Provider      string   `json:"provider"`
	Model         string   `json:"model"`
	Iteration     int      `json:"iteration"`
	Raw           string   `json:"-"`
}
