package tui

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandevgo/tuskchat/internal/core"
)

const maxAttachmentSize = 20 << 20

var errAttachmentTooLarge = errors.New("attachment is too large")

// loadAttachment reads a local file for the next turn. The media type comes
// from the extension, falling back to content sniffing.
func loadAttachment(path string) (*core.Attachment, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("usage: /attach <path>")
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxAttachmentSize {
		return nil, fmt.Errorf("%w: %d bytes", errAttachmentTooLarge, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	mediaType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mediaType == "" {
		mediaType = http.DetectContentType(data)
	}
	mediaType, _, _ = strings.Cut(mediaType, ";")

	return &core.Attachment{
		Name:      filepath.Base(path),
		MediaType: strings.TrimSpace(mediaType),
		Data:      data,
	}, nil
}
