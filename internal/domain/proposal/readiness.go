package proposal

import "strings"

// Canned readiness rationales.
const (
	ReasonSendReady = "Clear positioning with concrete example and client decision risk addressed."
	ReasonReview    = "Professional and trustworthy, but could speak more directly to client risk."
	ReasonRevise    = "Needs clearer relevance or stronger positioning."
)

// Readiness is the classification of a finished text.
type Readiness struct {
	Status Status
	Reason string
}

// Evaluate classifies a finished text by its tone and client-focus flag.
func Evaluate(tone string, makeClientFocused bool) Readiness {
	switch t := strings.ToLower(strings.TrimSpace(tone)); {
	case t == "bold" && makeClientFocused:
		return Readiness{Status: StatusSendReady, Reason: ReasonSendReady}
	case t == "safe":
		return Readiness{Status: StatusReview, Reason: ReasonReview}
	default:
		return Readiness{Status: StatusRevise, Reason: ReasonRevise}
	}
}

// reasonFor returns the rationale exposed to the account, nil below pro.
func (r Readiness) reasonFor(proActive bool) *string {
	if !proActive {
		return nil
	}
	reason := r.Reason
	return &reason
}
