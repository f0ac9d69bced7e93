package helpers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// WriteCSV sends body as a CSV attachment named "<prefix>-<YYYY-MM-DD>.csv".
func WriteCSV(w http.ResponseWriter, prefix string, now time.Time, body []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.csv"`, prefix, now.Format("2006-01-02")))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
