package discovery

import (
	"fmt"
	"strings"
)

// TXT record key constants.
const (
	TXTKeyNodeID    = "id" // user id in "!%08x" form
	TXTKeyShortName = "sn" // four-character short name
	TXTKeyLongName  = "ln" // display name
	TXTKeyHwModel   = "hw" // hardware model
	TXTKeyFirmware  = "fw" // firmware version
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeRadioTXT creates TXT records for radio discovery.
func EncodeRadioTXT(info *RadioInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	txt[TXTKeyNodeID] = info.NodeID

	if info.ShortName != "" {
		txt[TXTKeyShortName] = info.ShortName
	}
	if info.LongName != "" {
		txt[TXTKeyLongName] = info.LongName
	}
	if info.HwModel != "" {
		txt[TXTKeyHwModel] = info.HwModel
	}
	if info.Firmware != "" {
		txt[TXTKeyFirmware] = info.Firmware
	}

	return txt
}

// DecodeRadioTXT parses TXT records from radio discovery.
func DecodeRadioTXT(txt TXTRecordMap) (*RadioInfo, error) {
	info := &RadioInfo{}

	var ok bool
	info.NodeID, ok = txt[TXTKeyNodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyNodeID)
	}
	if !validNodeID(info.NodeID) {
		return nil, fmt.Errorf("%w: node id %q", ErrInvalidTXTRecord, info.NodeID)
	}

	info.ShortName = txt[TXTKeyShortName]
	info.LongName = txt[TXTKeyLongName]
	info.HwModel = txt[TXTKeyHwModel]
	info.Firmware = txt[TXTKeyFirmware]

	return info, nil
}

// validNodeID checks the "!%08x" user id form.
func validNodeID(id string) bool {
	if len(id) != 9 || id[0] != '!' {
		return false
	}
	for _, c := range id[1:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value"
// strings, the form mDNS libraries expect.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}
