package gemini

// DefaultAudioPrompt asks for a plain transcription.
const DefaultAudioPrompt = `Transcreva este áudio em português brasileiro com precisão.
Retorne apenas o texto transcrito sem comentários adicionais.`

// DefaultVideoPrompt asks for speech, on-screen text and a visual
// description in marked sections.
const DefaultVideoPrompt = `Transcreva este vídeo em português. Caso não tenha som liste os textos exibidos na tela em ordem. Também forneça uma descrição do que o vídeo apresenta (mesmo que tenha áudio).

Instruções específicas:
- Se houver fala, transcreva com precisão em português brasileiro
- Se não houver fala mas houver texto na tela, liste todos os textos visíveis em ordem cronológica
- Se não houver fala nem texto, descreva o conteúdo visual do vídeo.
- Se houver tanto fala quanto texto, inclua ambos separadamente
- Mantenha a formatação e pontuação adequadas
- Ignore música de fundo, concentre-se na fala e textos

Formato de resposta:
` + MarkerSpeech + ` (transcrição da fala, se houver)
` + MarkerScreenText + ` (textos visíveis na tela, se houver)
` + MarkerDescription + ` (descrição detalhada do que ocorre no vídeo, se não houver fala nem texto visível, ou um resumo adicional)
`
