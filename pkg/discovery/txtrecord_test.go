package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRadioTXTRoundTrip(t *testing.T) {
	info := &RadioInfo{
		NodeID:    "!aabbccdd",
		ShortName: "BASE",
		LongName:  "Base Station",
		HwModel:   "HELTEC_V3",
		Firmware:  "2.5.1",
	}

	txt := EncodeRadioTXT(info)
	strs := TXTRecordsToStrings(txt)
	back, err := DecodeRadioTXT(StringsToTXTRecords(strs))
	require.NoError(t, err)
	assert.Equal(t, info, back)
}

func TestRadioTXTOptionalFieldsOmitted(t *testing.T) {
	txt := EncodeRadioTXT(&RadioInfo{NodeID: "!00000001"})
	assert.Len(t, txt, 1)
	assert.Equal(t, "!00000001", txt[TXTKeyNodeID])
}

func TestDecodeRadioTXTMissingNodeID(t *testing.T) {
	_, err := DecodeRadioTXT(TXTRecordMap{TXTKeyShortName: "BASE"})
	assert.ErrorIs(t, err, ErrMissingRequired)
}

func TestDecodeRadioTXTInvalidNodeID(t *testing.T) {
	cases := []string{"", "aabbccdd", "!aabbccd", "!AABBCCDD", "!aabbccddx", "!aabbccdg"}
	for _, id := range cases {
		_, err := DecodeRadioTXT(TXTRecordMap{TXTKeyNodeID: id})
		assert.ErrorIs(t, err, ErrInvalidTXTRecord, "node id %q", id)
	}
}

func TestStringsToTXTRecords(t *testing.T) {
	txt := StringsToTXTRecords([]string{"id=!00000001", "ln=Base=Station", "flag"})
	assert.Equal(t, "!00000001", txt["id"])
	// Only the first '=' splits key from value.
	assert.Equal(t, "Base=Station", txt["ln"])
	assert.Equal(t, "", txt["flag"])
}

func TestValidateInstanceName(t *testing.T) {
	assert.NoError(t, ValidateInstanceName("Base Station"))
	assert.ErrorIs(t, ValidateInstanceName(""), ErrInstanceNameInvalid)

	long := make([]byte, MaxInstanceNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.ErrorIs(t, ValidateInstanceName(string(long)), ErrInstanceNameInvalid)
}

func TestRadioServiceAddr(t *testing.T) {
	svc := &RadioService{Host: "radio.local.", Port: 4403}
	assert.Equal(t, "radio.local.:4403", svc.Addr())

	svc.Addresses = []string{"192.168.1.50", "fe80::1"}
	assert.Equal(t, "192.168.1.50:4403", svc.Addr())
}
