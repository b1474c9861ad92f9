package ssim

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// ScheduleFile is an assembled SSIM file. It is never mutated after Build.
type ScheduleFile struct {
	Lines       []string
	CarrierCode string
	PeriodStart time.Time
	PeriodEnd   time.Time
	IssuedAt    time.Time
	FlightCount int
}

// FileName follows <carrier>_<YYYYMMDD>_<eff>-<disc>.ssim
func (f *ScheduleFile) FileName() string {
	return fmt.Sprintf("%s_%s_%s-%s.ssim",
		f.CarrierCode,
		f.IssuedAt.Format("20060102"),
		formatDate(f.PeriodStart),
		formatDate(f.PeriodEnd),
	)
}

// WriteTo writes every line terminated by a newline
func (f *ScheduleFile) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, line := range f.Lines {
		c, err := bw.WriteString(line + "\n")
		n += int64(c)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

func (f *ScheduleFile) String() string {
	var b strings.Builder
	b.Grow(len(f.Lines) * (LineWidth + 1))
	for _, line := range f.Lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Validate runs the line validator over the assembled file
func (f *ScheduleFile) Validate() Report {
	return Validate(f.Lines)
}
