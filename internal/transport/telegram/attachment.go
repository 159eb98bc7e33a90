package telegram

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sandevgo/tuskchat/internal/core"
	tele "gopkg.in/telebot.v3"
)

// Bot API downloads are capped at 20 MB.
const maxAttachmentSize = 20 << 20

const defaultAttachmentPrompt = "Please look at the attached file and describe what it contains."

var errAttachmentTooLarge = errors.New("attachment is too large")

type fileDownloader interface {
	File(file *tele.File) (io.ReadCloser, error)
}

func download(api fileDownloader, f *tele.File, name, mediaType string) (*core.Attachment, error) {
	if f.FileSize > maxAttachmentSize {
		return nil, fmt.Errorf("%w: %d bytes", errAttachmentTooLarge, f.FileSize)
	}

	rc, err := api.File(f)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxAttachmentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > maxAttachmentSize {
		return nil, fmt.Errorf("%w: more than %d bytes", errAttachmentTooLarge, maxAttachmentSize)
	}
	return newAttachment(name, mediaType, data), nil
}

// newAttachment sniffs the media type when Telegram did not report one.
func newAttachment(name, mediaType string, data []byte) *core.Attachment {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = http.DetectContentType(data)
	}
	mediaType, _, _ = strings.Cut(mediaType, ";")

	return &core.Attachment{
		Name:      name,
		MediaType: strings.TrimSpace(mediaType),
		Data:      data,
	}
}

func captionOr(caption string) string {
	if c := strings.TrimSpace(caption); c != "" {
		return c
	}
	return defaultAttachmentPrompt
}
