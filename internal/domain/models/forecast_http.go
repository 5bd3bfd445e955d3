package models

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Requests for the forecasting HTTP endpoints.

type PredictRequest struct {
	LargeCount Count `json:"ternak_besar" validate:"gte=0" msg:"Jumlah ternak tidak boleh negatif"`
	SmallCount Count `json:"ternak_kecil" validate:"gte=0" msg:"Jumlah ternak tidak boleh negatif"`
}

type HistoryRequest struct {
	Days int `query:"days" json:"days" default:"30" validate:"gte=1,lte=3650"`
}

// Count is a head count that also accepts a quoted number such as "10".
type Count float64

var errNotANumber = errors.New("count is not a number")

func (n *Count) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] != '"' {
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return err
		}
		*n = Count(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return errNotANumber
	}
	*n = Count(f)
	return nil
}

// HistoryPoint is one row of the revenue history response.
type HistoryPoint struct {
	Date    string  `json:"Tanggal"`
	Revenue float64 `json:"Total_Pendapatan"`
}
