package dto

// Response is the body of every API response. Exactly one of Data or Errors
// is set.
type Response struct {
	Data   any      `json:"data,omitempty"`
	Errors []string `json:"errors,omitempty"`
}
