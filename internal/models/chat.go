package models

// TripQuery is a city pair and date extracted from a chat message
type TripQuery struct {
	Origin      string
	Destination string
	Date        Date
}

// ChatRequest is the chatbot request body
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the chatbot reply
type ChatResponse struct {
	Answer   string `json:"answer"`
	Redirect string `json:"redirect,omitempty"`
	Trips    []Trip `json:"trips,omitempty"`
}
