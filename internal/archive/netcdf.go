package archive

import (
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf"
)

// Time coordinate names, newest CDS layout first
var timeVariableNames = []string{"valid_time", "time"}

// timeAxis is the raw time coordinate of one file
type timeAxis struct {
	values interface{}
	units  string
}

// readNetCDFTimeAxis reads only the time coordinate of a NetCDF file. The
// data variables are never loaded.
func readNetCDFTimeAxis(path string) (timeAxis, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return timeAxis{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer nc.Close()

	for _, name := range timeVariableNames {
		vr, err := nc.GetVariable(name)
		if err != nil || vr == nil {
			continue
		}

		raw, has := vr.Attributes.Get("units")
		if !has {
			return timeAxis{}, fmt.Errorf("%s: variable %s has no units", path, name)
		}
		units, ok := raw.(string)
		if !ok {
			return timeAxis{}, fmt.Errorf("%s: variable %s has non-text units", path, name)
		}

		return timeAxis{values: vr.Values, units: units}, nil
	}

	return timeAxis{}, fmt.Errorf("%s: no time coordinate (tried %v)", path, timeVariableNames)
}
