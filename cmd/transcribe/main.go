package main

import (
	"whisper-transcribe/cmd/transcribe/cmd"

	// Engines register themselves in init
	_ "whisper-transcribe/internal/app/api/elevenlabs"
	_ "whisper-transcribe/internal/app/api/gemini"
	_ "whisper-transcribe/internal/app/api/openai/whisper"
	_ "whisper-transcribe/internal/app/api/whisper_binding"
	_ "whisper-transcribe/internal/app/api/whisper_cpp"
	_ "whisper-transcribe/internal/app/api/whisper_server"
	_ "whisper-transcribe/internal/app/api/whisper_ssh"
)

func main() {
	cmd.Execute()
}
