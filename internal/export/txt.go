package export

import (
	"fmt"
	"strings"
	"time"
)

// UnavailableMarker is emitted for records whose message no longer
// resolves. The other two formats skip such records instead.
const UnavailableMarker = "message unavailable"

// Text renders the plain-text export: a header block followed by one
// section per record in ascending index order.
func Text(src Source, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Favorites - %s\n", src.Subject)
	fmt.Fprintf(&b, "Exported: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total: %d\n", len(src.Records))

	for _, rec := range SortRecords(src.Records) {
		b.WriteString("\n")
		msg, idx, ok := src.resolve(rec)
		if !ok {
			fmt.Fprintf(&b, "[%s] %s\n", rec.MessageID, UnavailableMarker)
			continue
		}
		fmt.Fprintf(&b, "[%d] %s", idx, msg.Sender)
		if msg.SendDate != 0 {
			fmt.Fprintf(&b, " (%s)", time.Unix(msg.SendDate, 0).Format("2006-01-02 15:04:05"))
		}
		b.WriteString("\n")
		if rec.Note != "" {
			fmt.Fprintf(&b, "note: %s\n", rec.Note)
		}
	}
	return b.String()
}
