package composer

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/samgozman/vn-market-thread/collector"
	"github.com/samgozman/vn-market-thread/providers"
	"github.com/samgozman/vn-market-thread/utils"
)

const (
	header       = "*📊 VIETNAM MARKET UPDATE*\n\n"
	footerLayout = "02/01/2006 15:04:05"
)

// Sections is the collected data, one field per message section.
// Empty fields (failed, disabled or no data) are skipped.
type Sections struct {
	Gold     string
	Stocks   []string
	VNIndex  string
	Exchange []string
	Crypto   []string
}

// IsEmpty reports whether there is nothing to compose.
func (s Sections) IsEmpty() bool {
	return strings.TrimSpace(s.Gold) == "" &&
		strings.TrimSpace(s.VNIndex) == "" &&
		len(compact(s.Stocks)) == 0 &&
		len(compact(s.Exchange)) == 0 &&
		len(compact(s.Crypto)) == 0
}

// SectionsFrom maps the collection outcomes to message sections by source name.
// Failed and absent sources give empty sections.
func SectionsFrom(res *collector.CollectionResult) Sections {
	if res == nil {
		return Sections{}
	}

	return Sections{
		Gold:     res.Line(providers.SourceGold),
		Stocks:   res.Lines(providers.SourceStock),
		VNIndex:  res.Line(providers.SourceVNIndex),
		Exchange: res.Lines(providers.SourceExchange),
		Crypto:   res.Lines(providers.SourceCrypto),
	}
}

// Compose builds the Telegram Markdown message with sections in a fixed order:
// gold, stocks, index, exchange rates, crypto. Every section is a fenced block.
//
// Returns an empty string if all sections are empty, so nothing should be sent.
func Compose(s Sections, now time.Time) string {
	if s.IsEmpty() {
		return ""
	}

	var b strings.Builder
	b.WriteString(header)

	section(&b, "🥇 *GOLD PRICES*", single(s.Gold))
	section(&b, "📈 *VIETNAMESE STOCKS*", compact(s.Stocks))
	section(&b, "📊 *MARKET INDEX*", single(s.VNIndex))
	section(&b, "💱 *VCB EXCHANGE RATES*", compact(s.Exchange))
	section(&b, "₿ *CRYPTOCURRENCY*", compact(s.Crypto))

	b.WriteString("_Updated: ")
	b.WriteString(now.UTC().In(utils.VietnamZone).Format(footerLayout))
	b.WriteString(" (UTC+7)_")

	return b.String()
}

func section(b *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}

	b.WriteString(title)
	b.WriteString("\n```\n")
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString("```\n\n")
}

func single(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	return []string{line}
}

func compact(lines []string) []string {
	return lo.Filter(lines, func(l string, _ int) bool {
		return strings.TrimSpace(l) != ""
	})
}
