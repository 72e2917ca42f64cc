package types

// SmartCtlOutput represents the subset of smartctl JSON output the
// burn-in tool consumes
type SmartCtlOutput struct {
	Device struct {
		Name     string `json:"name"`
		InfoName string `json:"info_name"`
		Type     string `json:"type"`
		Protocol string `json:"protocol"`
	} `json:"device"`
	SmartCtl struct {
		ExitStatus int `json:"exit_status"`
		Messages   []struct {
			String   string `json:"string"`
			Severity string `json:"severity"`
		} `json:"messages"`
	} `json:"smartctl"`
	SerialNumber    string `json:"serial_number"`
	ModelName       string `json:"model_name"`
	ModelFamily     string `json:"model_family"`
	FirmwareVersion string `json:"firmware_version"`
	UserCapacity    struct {
		Blocks int64 `json:"blocks"`
		Bytes  int64 `json:"bytes"`
	} `json:"user_capacity"`
	LogicalBlockSize  int `json:"logical_block_size"`
	PhysicalBlockSize int `json:"physical_block_size"`

	// Pointer so an absent field is distinguishable from an explicit
	// zero ("Solid State Device").
	RotationRate *int `json:"rotation_rate,omitempty"`

	SmartSupport struct {
		Available bool `json:"available"`
		Enabled   bool `json:"enabled"`
	} `json:"smart_support"`
	SmartStatus struct {
		Passed bool `json:"passed"`
	} `json:"smart_status"`
	AtaSmartData struct {
		SelfTest struct {
			Status struct {
				Value            int    `json:"value"`
				String           string `json:"string"`
				Passed           bool   `json:"passed"`
				RemainingPercent int    `json:"remaining_percent"`
			} `json:"status"`
			PollingMinutes struct {
				Short      int `json:"short"`
				Extended   int `json:"extended"`
				Conveyance int `json:"conveyance"`
			} `json:"polling_minutes"`
		} `json:"self_test"`
	} `json:"ata_smart_data"`
	AtaSmartErrorLog struct {
		Summary struct {
			Revision int `json:"revision"`
			Count    int `json:"count"`
		} `json:"summary"`
	} `json:"ata_smart_error_log"`
	AtaSmartSelfTestLog struct {
		Standard struct {
			Revision int `json:"revision"`
			Table    []struct {
				Type struct {
					Value  int    `json:"value"`
					String string `json:"string"`
				} `json:"type"`
				Status struct {
					Value  int    `json:"value"`
					String string `json:"string"`
					Passed bool   `json:"passed"`
				} `json:"status"`
				PowerOnHours int `json:"lifetime_hours"`
			} `json:"table"`
		} `json:"standard"`
	} `json:"ata_smart_self_test_log"`
}

// SelfTestInProgress reports whether the self-test status block shows a
// test currently running. Values 0xF0..0xFF encode "in progress" with
// the low nibble holding remaining tenths.
func (o *SmartCtlOutput) SelfTestInProgress() bool {
	return o.AtaSmartData.SelfTest.Status.Value >= 0xF0 ||
		o.AtaSmartData.SelfTest.Status.RemainingPercent > 0
}
