package audio

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"
)

// VideoExtensions lists the container formats accepted for video transcription.
var VideoExtensions = []string{".mp4", ".webm", ".mov", ".avi", ".mkv"}

var knownMIMETypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".flac": "audio/flac",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
}

// DetectMIME resolves a media type for the file. The extension is checked
// first, then the system table, then the file content.
func DetectMIME(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))
	if t, ok := knownMIMETypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if mediaType, _, err := mime.ParseMediaType(t); err == nil {
			return mediaType
		}
	}
	if m, err := mimetype.DetectFile(filePath); err == nil {
		return m.String()
	}
	return "application/octet-stream"
}

// IsAudioMIME reports whether the media type is audio/*.
func IsAudioMIME(mediaType string) bool {
	return strings.HasPrefix(mediaType, "audio/")
}

// IsVideoMIME reports whether the media type is video/*.
func IsVideoMIME(mediaType string) bool {
	return strings.HasPrefix(mediaType, "video/")
}

// IsSupportedVideo reports whether the extension is one of VideoExtensions.
func IsSupportedVideo(filePath string) bool {
	return lo.Contains(VideoExtensions, strings.ToLower(filepath.Ext(filePath)))
}

// IsMediaFile reports whether the file looks like audio or video by name.
func IsMediaFile(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	if _, ok := knownMIMETypes[ext]; ok {
		return true
	}
	t := mime.TypeByExtension(ext)
	return IsAudioMIME(t) || IsVideoMIME(t)
}
