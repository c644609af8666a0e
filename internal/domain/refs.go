package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Ranges of the random suffixes used in references
const (
	OperatorRefSuffixRange = 1000
	RebookRefSuffixRange   = 10000
	CheckpointSuffixRange  = 1000
	PINRange               = 9000
)

// OperatorJobRef formats JOB-<YY><MM>-<n> for jobs created by an operator
func OperatorJobRef(now time.Time, n int) string {
	return fmt.Sprintf("JOB-%s-%d", now.Format("0601"), n)
}

// RebookJobRef formats JOB-<YYYY>-<n> for jobs created by a rebook
func RebookJobRef(now time.Time, n int) string {
	return fmt.Sprintf("JOB-%d-%d", now.Year(), n)
}

// CheckpointCode formats the QR payload CHK-<epoch-ms>-<n>
func CheckpointCode(now time.Time, n int) string {
	return fmt.Sprintf("CHK-%d-%d", now.UnixMilli(), n)
}

// InvoiceNumber derives the invoice number from the job reference
func InvoiceNumber(refNumber string) string {
	return "INV-" + strings.TrimPrefix(refNumber, "JOB-")
}

// QRPayload is the client-facing lookup URL. The viewer resolves the job id, not the ref.
func QRPayload(origin, jobID string) string {
	return strings.TrimRight(origin, "/") + "/?jobRef=" + url.QueryEscape(jobID)
}

// ClientPIN formats a 4-digit portal PIN from n in [0, PINRange)
func ClientPIN(n int) string {
	return fmt.Sprintf("%04d", 1000+n%PINRange)
}
