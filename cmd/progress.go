package cmd

import (
	"github.com/cheggaaa/pb/v3"
)

var barTemplate = pb.ProgressBarTemplate(`{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }}`)

// barProgress renders one progress bar per file being copied.
type barProgress struct {
	bar *pb.ProgressBar
}

func (p *barProgress) Start(path string, size int64) {
	p.bar = pb.New64(size).
		SetTemplate(barTemplate).
		Set(pb.Bytes, true).
		Set("prefix", path+": ").
		Start()
}

func (p *barProgress) Add(n int64) {
	p.bar.Add64(n)
}

func (p *barProgress) Done() {
	p.bar.Finish()
}
