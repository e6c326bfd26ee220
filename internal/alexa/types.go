// Package alexa exposes the assistant as an Alexa custom-skill webhook. It
// speaks the skill request/response JSON and maps it onto dialog intents;
// session attributes live server-side, not in the skill session blob.
package alexa

// RequestEnvelope is the top-level skill request.
type RequestEnvelope struct {
	Version string  `json:"version"`
	Session Session `json:"session"`
	Request Request `json:"request"`
}

// Session identifies the conversation and the Alexa user.
type Session struct {
	New       bool   `json:"new"`
	SessionID string `json:"sessionId"`
	User      User   `json:"user"`
}

// User is the skill user; AccessToken is set once account linking completed.
type User struct {
	UserID      string `json:"userId"`
	AccessToken string `json:"accessToken,omitempty"`
}

// Request is the polymorphic request body. Intent is only set for
// IntentRequest, Reason only for SessionEndedRequest.
type Request struct {
	Type      string        `json:"type"`
	RequestID string        `json:"requestId"`
	Timestamp string        `json:"timestamp"`
	Locale    string        `json:"locale"`
	Intent    RequestIntent `json:"intent,omitempty"`
	Reason    string        `json:"reason,omitempty"`
}

// RequestIntent is the recognized intent with its filled slots.
type RequestIntent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots,omitempty"`
}

// Slot is one filled slot value.
type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ResponseEnvelope is the top-level skill response.
type ResponseEnvelope struct {
	Version  string   `json:"version"`
	Response Response `json:"response"`
}

// Response carries the rendered reply.
type Response struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Card             *Card         `json:"card,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	ShouldEndSession bool          `json:"shouldEndSession"`
}

// OutputSpeech is plain-text speech.
type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Card renders in the Alexa app; type LinkAccount triggers account linking.
type Card struct {
	Type string `json:"type"`
}

// Reprompt is spoken when the user stays silent.
type Reprompt struct {
	OutputSpeech OutputSpeech `json:"outputSpeech"`
}

const (
	requestTypeLaunch       = "LaunchRequest"
	requestTypeIntent       = "IntentRequest"
	requestTypeSessionEnded = "SessionEndedRequest"

	speechTypePlainText = "PlainText"
	cardTypeLinkAccount = "LinkAccount"
)
