package main

// Step is one position in the scripted intake sequence.
type Step string

const (
	StepGetName     Step = "get_name"
	StepGetLocation Step = "get_location"
	StepGetPhone    Step = "get_phone"
	StepGetIssue    Step = "get_issue"
	StepChatting    Step = "chatting"
)

// WelcomeMessage opens every conversation and asks for the visitor's name.
const WelcomeMessage = "Ola! Sou a assistente virtual do Dr. Weverton Quintairos. Para agilizar seu atendimento, por favor, me diga seu nome completo."

// Scripted replies, one per transition. They double as the response when the
// completions provider is disabled or fails.
const (
	fallbackLocation = "Entendido. Qual e o seu numero de telefone com DDD?"
	fallbackPhone    = "Perfeito. Pode descrever brevemente o seu caso?"
	fallbackIssue    = "Obrigado pelas informacoes. Quer acrescentar algo mais? O Dr. Weverton ou a equipe retornara em breve."
	fallbackChatting = "Estou aqui para ajudar com mais detalhes do caso ou duvidas adicionais."
)

// Advance runs one intake transition for an inbound client message: it
// captures the message into the field matching the current step, moves the
// step forward and returns the scripted fallback reply for the transition.
// get_issue advances without capturing a field (the case description only
// lives in the message log), and chatting absorbs everything after it.
func Advance(state *ClientState, message string) string {
	switch state.Step {
	case StepGetName:
		state.Name = message
		state.Step = StepGetLocation
		return "Obrigado, " + state.Name + ". Qual sua cidade e estado?"
	case StepGetLocation:
		state.Location = message
		state.Step = StepGetPhone
		return fallbackLocation
	case StepGetPhone:
		state.Phone = message
		state.Step = StepGetIssue
		return fallbackPhone
	case StepGetIssue:
		state.Step = StepChatting
		return fallbackIssue
	default:
		return fallbackChatting
	}
}
