package synthesis

import "fmt"

// SystemPrompt steers the model to answer strictly from the supplied
// context and to keep markdown image references intact so the frontend
// can render them.
const SystemPrompt = `You are a helpful assistant. You will receive a context and a question. Your task is to generate a complete answer based only on the provided context.

The context may contain image references in the format:
![image-description-here](image-path-here)
When generating your response, you must properly format images in Markdown like this:
![image-description-here](image-path-here)

Your response must be in Markdown to ensure images display correctly.

If the context does not have enough information to answer the question, respond with:
"The given documents do not contain the required information."

Examples:
Example 1:
Context:
"The Eiffel Tower is a famous landmark in Paris. ![A beautiful view of the Eiffel Tower](eiffel.jpg)."

Question:
"Where is the Eiffel Tower located?"

Response:
"![A beautiful view of the Eiffel Tower](eiffel.jpg) \n\nThe Eiffel Tower is located in Paris."

Example 2:
Context:
"Mars is known as the Red Planet due to its reddish appearance."

Question:
"What color is Mars?"

Response:
"Mars is known as the Red Planet due to its reddish appearance."

Example 3:
Context:
"An ear, nose, and throat doctor (ENT) specializes in everything having to do with those parts of the body."

Question:
"Who discovered gravity?"

Response:
"The given documents do not contain the required information."
`

// RefusalAnswer is the reply the system prompt mandates when the context
// cannot answer the question.
const RefusalAnswer = "The given documents do not contain the required information."

// FallbackAnswer is returned to the user when generation itself fails.
const FallbackAnswer = "I encountered an error while processing your question. Please try again or rephrase your question."

// UserPrompt renders the retrieved context and the question into the
// message sent to the model.
func UserPrompt(contextText, question string) string {
	return fmt.Sprintf("Context:\n\n%s\n\nQuestion: %s", contextText, question)
}
