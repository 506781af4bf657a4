package summarize

import "strings"

const promptHead = `You are an expert document summarizer. Provide a clear, well-structured summary of the following text.

IMPORTANT: Do NOT use asterisk characters for emphasis or formatting. Use plain text only. No markdown bold or italic formatting.

Guidelines:
- Start with a brief overview (1-2 sentences)
- Use numbered points (1, 2, 3...) for main ideas or key points
- Use bullet points (dashes -) as sub-points under each numbered main point
- Include important details, facts, or conclusions
- Keep the summary concise but comprehensive
- Maintain the original tone and context

IMPORTANT: Do NOT use asterisk characters for emphasis or formatting. Use plain text only. No markdown bold or italic formatting.

Text to summarize:

`

const promptTail = `

Summary:`

// BuildPrompt renders the summarization instructions around content.
// content is inserted verbatim; the template itself contains no asterisks.
func BuildPrompt(content string) string {
	var sb strings.Builder
	sb.Grow(len(promptHead) + len(content) + len(promptTail))
	sb.WriteString(promptHead)
	sb.WriteString(content)
	sb.WriteString(promptTail)
	return sb.String()
}
