package cds

import "fmt"

const (
	// ProductReanalysis is the ERA5 product type fetched by the loader
	ProductReanalysis = "reanalysis"

	// FormatNetCDF is the output format fetched by the loader
	FormatNetCDF = "netcdf"
)

// Request describes one retrieve call. Area is north, west, south, east.
type Request struct {
	ProductType string
	Variable    string
	Year        int
	Month       int
	Days        []string
	Times       []string
	DataFormat  string
	Area        [4]float64
}

// MonthRequest builds a request for every day and hour of one month.
// Days past the end of shorter months are ignored by the server.
func MonthRequest(variable string, year, month int, area [4]float64) Request {
	days := make([]string, 0, 31)
	for d := 1; d <= 31; d++ {
		days = append(days, fmt.Sprintf("%02d", d))
	}
	times := make([]string, 0, 24)
	for h := 0; h < 24; h++ {
		times = append(times, fmt.Sprintf("%02d:00", h))
	}

	return Request{
		ProductType: ProductReanalysis,
		Variable:    variable,
		Year:        year,
		Month:       month,
		Days:        days,
		Times:       times,
		DataFormat:  FormatNetCDF,
		Area:        area,
	}
}

// inputs renders the request as the "inputs" object of an execution call
func (r Request) inputs() map[string]interface{} {
	return map[string]interface{}{
		"product_type":    []string{r.ProductType},
		"variable":        []string{r.Variable},
		"year":            []string{fmt.Sprintf("%d", r.Year)},
		"month":           []string{fmt.Sprintf("%02d", r.Month)},
		"day":             r.Days,
		"time":            r.Times,
		"data_format":     r.DataFormat,
		"download_format": "unarchived",
		"area":            r.Area[:],
	}
}
