// Package notify pings the admin when a payment proof lands. Delivery is
// fire-and-forget: a lost notification costs a follow-up, not a payment.
package notify

import (
	"fmt"
	"log"
)

// PaymentNotice carries everything the admin needs to reconcile a transfer.
type PaymentNotice struct {
	CourseTitle string
	Username    string
	Email       string
	AmountDue   int
	UniqueCode  int
	VerifyURL   string
}

type Notifier interface {
	PaymentSubmitted(n PaymentNotice)
}

// ConsoleNotifier simulates the WhatsApp blast to the admin phone by writing
// the message to the log. Swap in a real sender without touching callers.
type ConsoleNotifier struct {
	AdminPhone string
}

func (c *ConsoleNotifier) PaymentSubmitted(n PaymentNotice) {
	msg := fmt.Sprintf(
		"NOTIFIKASI PEMBAYARAN BARU\n"+
			"Kursus: %s\n"+
			"Oleh: %s (%s)\n"+
			"Total Bayar: Rp %s (Termasuk Kode Unik: %d)\n"+
			"Status: Menunggu Verifikasi Admin.\n"+
			"Link Verifikasi: %s",
		n.CourseTitle, n.Username, n.Email, FormatRupiah(n.AmountDue), n.UniqueCode, n.VerifyURL,
	)
	log.Printf("SIMULASI WHATSAPP BLAST KE ADMIN (%s):\n%s", c.AdminPhone, msg)
}

// FormatRupiah renders an amount with Indonesian thousand separators:
// 90037 -> "90.037".
func FormatRupiah(amount int) string {
	s := fmt.Sprintf("%d", amount)
	neg := false
	if amount < 0 {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
