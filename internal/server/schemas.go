package server

const agentChatSchema = `{
	"type": "object",
	"required": ["email_content"],
	"properties": {
		"email_content": {"type": "string"},
		"reply_to": {"type": "string"}
	},
	"additionalProperties": false
}`

const chatSchema = `{
	"type": "object",
	"required": ["query"],
	"properties": {
		"query": {"type": "string"}
	},
	"additionalProperties": false
}`
