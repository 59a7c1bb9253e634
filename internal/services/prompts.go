package services

import (
	"fmt"
	"strings"

	"neuron_backoffice/internal/models"
	"neuron_backoffice/pkg/llm"
)

// FinalizeFunctionName is the function the model calls to end qualification.
const FinalizeFunctionName = "finalize_conversation"

const briefRule = "━━━━━━━━━━━━━━━━━━━━━"

// Persona names the bot and the company it speaks for.
type Persona struct {
	BotName     string
	CompanyName string
}

func (p Persona) SystemPrompt() string {
	return fmt.Sprintf(`Voce e o %[1]s, assistente virtual da %[2]s, empresa de desenvolvimento de software sob medida.

PERSONALIDADE:
- Cordial e profissional, mas leve, como uma pessoa real no WhatsApp
- Frases curtas; no maximo 3-4 linhas por mensagem
- No maximo 1 emoji por mensagem, so quando fizer sentido
- Use *negrito* e _italico_ do WhatsApp com moderacao
- Faca UMA pergunta por vez

OBJETIVO:
Qualificar o lead e coletar informacoes para um brief tecnico. Siga uma ordem natural:
1. Negocio do cliente e publico-alvo
2. Objetivo do projeto
3. Funcionalidades principais e suas prioridades
4. Stack, hospedagem e integracoes, apenas se o cliente tiver opiniao
5. Design pronto ou a criar
6. Prazo, orcamento e manutencao

REGRAS:
- Nao repita perguntas ja respondidas
- Se o cliente nao souber algo tecnico, tudo bem, siga em frente
- Se o cliente perguntar sobre a empresa, responda brevemente

QUANDO FINALIZAR:
- Chame a funcao %[3]s assim que tiver: objetivo do projeto, 2-3 funcionalidades principais, e prazo ou design ou orcamento
- Entre 5 e 8 trocas de mensagem sao suficientes
- Se o cliente parecer querer encerrar, finalize com o que ja tiver
- Ao finalizar NAO envie despedida; apenas chame a funcao

SOBRE A EMPRESA:
- %[2]s: aplicacoes web, mobile, APIs, sistemas de gestao e automacoes`, p.BotName, p.CompanyName, FinalizeFunctionName)
}

// FinalizeDeclaration is the schema the model must fill when it ends the dialogue.
func FinalizeDeclaration() llm.FunctionDeclaration {
	str := func(description string) map[string]interface{} {
		return map[string]interface{}{"type": "string", "description": description}
	}
	return llm.FunctionDeclaration{
		Name:        FinalizeFunctionName,
		Description: "Finaliza a conversa quando informacoes suficientes foram coletadas do lead. Gera um brief tecnico.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"contactName":      str("Nome do contato ou empresa"),
				"businessSummary":  str("Resumo do negocio do cliente em 1-2 frases"),
				"projectObjective": str("Objetivo principal do projeto"),
				"mainFeatures":     str("Funcionalidades principais identificadas com prioridade, uma por linha"),
				"integrations":     str("Integracoes externas mencionadas"),
				"preferredStack":   str("Stack ou tecnologia preferida pelo cliente"),
				"hosting":          str("Hospedagem preferida"),
				"hasDesign":        str("Se tem design pronto ou precisa criar"),
				"deadline":         str("Prazo mencionado e se tem flexibilidade"),
				"budget":           str("Faixa de orcamento ou modelo preferido"),
				"urgency":          str("Nivel de urgencia percebido: baixa, media ou alta"),
				"additionalNotes":  str("Informacoes adicionais relevantes"),
			},
			"required": []string{"projectObjective", "mainFeatures", "urgency"},
		},
	}
}

// FinalizeArgs are the structured arguments of a finalize call.
type FinalizeArgs struct {
	ContactName      string
	BusinessSummary  string
	ProjectObjective string
	MainFeatures     string
	Integrations     string
	PreferredStack   string
	Hosting          string
	HasDesign        string
	Deadline         string
	Budget           string
	Urgency          string
	AdditionalNotes  string
}

func ParseFinalizeArgs(args map[string]interface{}) FinalizeArgs {
	get := func(key string) string {
		v, ok := args[key]
		if !ok || v == nil {
			return ""
		}
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
		return fmt.Sprint(v)
	}
	return FinalizeArgs{
		ContactName:      get("contactName"),
		BusinessSummary:  get("businessSummary"),
		ProjectObjective: get("projectObjective"),
		MainFeatures:     get("mainFeatures"),
		Integrations:     get("integrations"),
		PreferredStack:   get("preferredStack"),
		Hosting:          get("hosting"),
		HasDesign:        get("hasDesign"),
		Deadline:         get("deadline"),
		Budget:           get("budget"),
		Urgency:          get("urgency"),
		AdditionalNotes:  get("additionalNotes"),
	}
}

func (p Persona) Greeting(contact *models.Contact) string {
	return strings.Join([]string{
		fmt.Sprintf("Olá, *%s*! 👋", contact.Name),
		"",
		fmt.Sprintf("Aqui é o *%s*, assistente virtual da *%s*.", p.BotName, p.CompanyName),
		"",
		"Percebemos que você solicitou contato pelo nosso site sobre:",
		fmt.Sprintf("_\"%s\"_", contact.Description),
		"",
		"Gostaria de conversar um pouco mais sobre isso? Estou aqui pra te ajudar!",
	}, "\n")
}

func (p Persona) Farewell(contactName string) string {
	if contactName == "" {
		contactName = "você"
	}
	return strings.Join([]string{
		fmt.Sprintf("*%s*, foi um prazer conversar com você! 😊", contactName),
		"",
		"Já tenho todas as informações que preciso. Nossa *equipe técnica* vai analisar tudo e entrará em contato em breve para dar continuidade ao seu projeto.",
		"",
		"Qualquer dúvida, estamos à disposição!",
		fmt.Sprintf("Obrigado pela confiança na *%s*! 🚀", p.CompanyName),
	}, "\n")
}

// Apology is sent when the model cannot produce a reply.
func (p Persona) Apology() string {
	return "Desculpe, tive um probleminha técnico agora. Pode me mandar sua última mensagem de novo em alguns instantes?"
}

// ContextMessage is prepended to the history so the model knows the lead
// without the text ever being shown to them.
func ContextMessage(contact *models.Contact) llm.Message {
	name, email, description := "desconhecido", "não informado", "sem descrição"
	if contact != nil {
		if contact.Name != "" {
			name = contact.Name
		}
		if contact.Email != "" {
			email = contact.Email
		}
		if contact.Description != "" {
			description = contact.Description
		}
	}
	return llm.Message{
		Role: llm.RoleUser,
		Content: "[CONTEXTO INTERNO - não mencione isso ao cliente] " +
			fmt.Sprintf("Lead: %s, email: %s. ", name, email) +
			fmt.Sprintf("Solicitou contato pelo site com a descrição: \"%s\". ", description) +
			"A primeira mensagem de saudação já foi enviada. " +
			"Continue a conversa naturalmente a partir do histórico abaixo.",
	}
}

// BuildAIMessages maps stored history onto model roles behind the context message.
func BuildAIMessages(contact *models.Contact, history []models.WhatsappMessage) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, ContextMessage(contact))
	for _, msg := range history {
		role := llm.RoleUser
		if msg.Sender == models.SenderBot {
			role = llm.RoleModel
		}
		messages = append(messages, llm.Message{Role: role, Content: msg.Content})
	}
	return messages
}

// BuildBrief renders the operator summary of a finished qualification.
func (p Persona) BuildBrief(conversation *models.WhatsappConversation, args FinalizeArgs) string {
	contactName := args.ContactName
	email := "Não informado"
	if conversation.Contact != nil {
		if contactName == "" {
			contactName = conversation.Contact.Name
		}
		if conversation.Contact.Email != "" {
			email = conversation.Contact.Email
		}
	}
	if contactName == "" {
		contactName = "Desconhecido"
	}

	lines := []string{
		"📋 *BRIEF TÉCNICO — NOVO LEAD*",
		briefRule,
		"",
		"👤 *Contato:* " + contactName,
		"📱 *Telefone:* " + conversation.PhoneNumber,
		"📧 *Email:* " + email,
	}
	if args.BusinessSummary != "" {
		lines = append(lines, "🏢 *Negócio:* "+args.BusinessSummary)
	}

	lines = append(lines, "", briefRule,
		"🎯 *Objetivo:* "+args.ProjectObjective,
		"",
		"⚙️ *Funcionalidades principais:*",
		args.MainFeatures,
	)
	if args.Integrations != "" {
		lines = append(lines, "", "🔗 *Integrações:* "+args.Integrations)
	}
	if args.PreferredStack != "" {
		lines = append(lines, "💻 *Stack:* "+args.PreferredStack)
	}
	if args.Hosting != "" {
		lines = append(lines, "☁️ *Hospedagem:* "+args.Hosting)
	}
	if args.HasDesign != "" {
		lines = append(lines, "🎨 *Design:* "+args.HasDesign)
	}

	lines = append(lines, "", briefRule)
	if args.Deadline != "" {
		lines = append(lines, "📅 *Prazo:* "+args.Deadline)
	}
	if args.Budget != "" {
		lines = append(lines, "💰 *Orçamento:* "+args.Budget)
	}
	lines = append(lines, "🔴 *Urgência:* "+args.Urgency)
	if args.AdditionalNotes != "" {
		lines = append(lines, "", "📝 *Notas:* "+args.AdditionalNotes)
	}

	lines = append(lines, "", briefRule, fmt.Sprintf("_Gerado automaticamente pelo %s Bot_", p.BotName))
	return strings.Join(lines, "\n")
}
