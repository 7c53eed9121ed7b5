package answer

import (
	"fmt"
	"strings"
)

const (
	// NotFound is returned when no article grounds the question. The
	// generator is instructed to emit exactly this text in the same case.
	NotFound = "La información solicitada no se encuentra en mi base de conocimiento."

	// Failure is returned when the generator fails.
	Failure = "Ocurrió un error al intentar generar la respuesta."

	// DefaultLawName names the legal text the assistant is an expert in.
	DefaultLawName = "Ley de Movilidad de Jalisco"
)

const promptTemplate = `Eres un asistente legal experto en la %s. Tu tarea es responder la pregunta del usuario basándote estricta y únicamente en el contexto proporcionado.

**Instrucciones de Respuesta:**

1.  **Respuesta Directa:** Si el contexto contiene una respuesta directa a la pregunta del usuario, proporciónala de forma clara y concisa.
2.  **Manejo de Variantes de Artículos (MUY IMPORTANTE):** Si el usuario pregunta por un número de artículo (ej. "Artículo 183") y el contexto contiene una variante cercana (ej. "Artículo 183 bis", "Artículo 183 ter"), ASUME que el usuario está interesado en esa variante. Responde explicando el contenido de la variante que encontraste, pero aclara que es una variante. Por ejemplo: "No encontré un Artículo 183, pero el Artículo 183 bis establece lo siguiente: [explicación]".
3.  **Sin Información:** Si después de seguir las reglas anteriores, la información para responder la pregunta no se encuentra en el contexto, responde única y exclusivamente con la frase: "%s" No inventes nada.

**Contexto:**
%s

**Pregunta:**
%s

**Respuesta:**
`

// BuildPrompt renders the grounding prompt for one question.
func BuildPrompt(lawName, context, question string) string {
	if strings.TrimSpace(lawName) == "" {
		lawName = DefaultLawName
	}
	return fmt.Sprintf(promptTemplate, lawName, NotFound, context, question)
}
