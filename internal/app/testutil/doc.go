// Package testutil provides test doubles for the transcription application.
//
// It contains three main components:
//
// 1. Provider doubles (mock_provider.go):
//   - MockProvider: testify mock of provider.Provider for call-level assertions
//   - FakeProvider: scripted provider backed by a real ResultCache, counting
//     initialization attempts and engine invocations
//
// 2. History doubles (mock_transcription_dao.go):
//   - MockTranscriptionDAO: in-memory repository.TranscriptionDAO with
//     injectable errors
//
// 3. File helpers:
//   - WriteMediaFile: writes a media file into a test temp dir
//
// # Usage Examples
//
//	fast := testutil.NewFakeProvider("faster-whisper", "olá", 0.9)
//	m := provider.NewManager(provider.StaticRouting{Primary: "faster-whisper"})
//	m.Register("faster-whisper", fast)
//	result := m.Transcribe(ctx, testutil.WriteMediaFile(t, "a.wav", []byte("x")), "pt")
package testutil
