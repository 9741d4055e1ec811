package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	saleNumberPrefix    = "SALE"
	saleNumberSeqDigits = 4
)

// saleNumberDatePrefix returns the "SALEYYYYMMDD" prefix for the given date.
func saleNumberDatePrefix(date time.Time) string {
	return saleNumberPrefix + date.Format("20060102")
}

// nextSaleNumber derives the next date-scoped sale number from the highest
// number already stored for that date ("" when none exists). The generator is
// stateless and allowed to race under concurrent callers; uniqueness is
// enforced by the database constraint plus the caller's retry loop, not here.
func nextSaleNumber(lastNumber string, date time.Time) string {
	prefix := saleNumberDatePrefix(date)
	sequence := 1
	if strings.HasPrefix(lastNumber, prefix) {
		if n, err := strconv.Atoi(lastNumber[len(prefix):]); err == nil {
			sequence = n + 1
		}
	}
	return fmt.Sprintf("%s%0*d", prefix, saleNumberSeqDigits, sequence)
}
