package ui

import (
	"ytdlq/internal/progress"
	"ytdlq/internal/updater"
)

type jobUpdateMsg struct {
	U progress.Update
}

type jobResultMsg struct {
	R progress.Result
}

type updateCheckedMsg struct {
	Notice updater.Notice
	Err    error
}
