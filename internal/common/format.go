package common

import (
	"fmt"
	"time"
)

// FormatMessageTime renders a message timestamp the way the chat UI shows it.
func FormatMessageTime(t time.Time) string {
	return t.Format("15:04")
}

// ImageFilename names a downloaded image after the moment it was saved.
func ImageFilename(t time.Time) string {
	return fmt.Sprintf("kuweni-ai-%d.png", t.UnixMilli())
}
