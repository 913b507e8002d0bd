package main

import "strings"

// ChatMessage is one role/content pair sent to the completions provider.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ClosingPhrase is the literal confirmation the assistant must emit once all
// three intake fields are collected.
const ClosingPhrase = `"Perfeito! Suas informacoes foram registradas. O Dr. Weverton entrara em contato em breve!"`

// BuildSystemPrompt assembles the system preamble for the provider: the
// persona and rules block plus an enumeration of which intake fields are
// already known and which are still pending for this client.
func BuildSystemPrompt(state *ClientState) string {
	var pending []string
	if state.Name == "" {
		pending = append(pending, "nome completo")
	}
	if state.Location == "" {
		pending = append(pending, "cidade/estado")
	}
	if state.Phone == "" {
		pending = append(pending, "telefone com DDD")
	}

	var known []string
	if state.Name != "" {
		known = append(known, "Nome: "+state.Name)
	}
	if state.Location != "" {
		known = append(known, "Cidade/Estado: "+state.Location)
	}
	if state.Phone != "" {
		known = append(known, "Telefone: "+state.Phone)
	}

	pendingText := "Dados principais coletados."
	if len(pending) > 0 {
		pendingText = "Ainda falta confirmar: " + strings.Join(pending, ", ") + "."
	}
	knownText := "Nenhum dado confirmado ainda."
	if len(known) > 0 {
		knownText = "Dados ja informados: " + strings.Join(known, " | ") + "."
	}

	return strings.Join([]string{
		"Voce e a assistente virtual do escritorio do Dr. Weverton Quintairos (direito penal e imobiliario).",
		"Sua missao: coletar informacoes do cliente de forma natural e amigavel.",
		"=== RECONHECIMENTO DE NOME ===",
		`Se o cliente disser o nome (ex: "Ola, meu nome e Joao"), sempre use nas respostas:`,
		`"Prazer, Joao! Como posso ajuda-lo?" Memorize e use o nome durante toda a conversa.`,
		"=== COLETAR (nesta ordem) ===",
		"1. Nome completo 2. Cidade/estado 3. Telefone com DDD 4. Resumo do caso juridico.",
		"=== REGRAS ===",
		"- Responda em portugues do Brasil, maximo 80 palavras.",
		"- Seja cordial, empolgada e profissional.",
		"- NAO faca promessas ou parecer juridico.",
		`- NUNCA de respostas vagas como "Posso ajudar em algo mais?".`,
		"- Quando coletar TUDO, diga:",
		ClosingPhrase,
		"- Se faltar dado, peca de forma direta e educada.",
		knownText,
		pendingText,
		"Se faltar algum dado, peca de forma direta e educada. Se ja tiver tudo, confirme recebimento.",
	}, " ")
}

// BuildPrompt maps the full transcript onto provider roles, preceded by the
// system preamble for the current state.
func BuildPrompt(state *ClientState, history []Message) []ChatMessage {
	prompt := make([]ChatMessage, 0, len(history)+1)
	prompt = append(prompt, ChatMessage{Role: "system", Content: BuildSystemPrompt(state)})
	for _, m := range history {
		role := "assistant"
		if m.IsClientMessage {
			role = "user"
		}
		prompt = append(prompt, ChatMessage{Role: role, Content: m.Message})
	}
	return prompt
}
