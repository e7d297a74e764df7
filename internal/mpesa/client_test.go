package mpesa

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmmarket/internal/domain"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0712345678", "254712345678"},
		{"254712345678", "254712345678"},
		{"+254712345678", "254712345678"},
		{"  0712345678  ", "254712345678"},
		{"0712 345 678", "254712345678"},
		{"0712-345-678", "254712345678"},
		{"+254 712 345 678", "254712345678"},
		{"254-712-345-678", "254712345678"},
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNormalizePhoneRejectsBadFormats(t *testing.T) {
	for _, in := range []string{"", "12345", "0812345678", "25571234567", "07123456789", "071234567"} {
		_, err := NormalizePhone(in)
		require.Error(t, err, in)
		var validation *domain.ValidationError
		assert.ErrorAs(t, err, &validation, in)
	}
}

func TestParseCallbackSuccess(t *testing.T) {
	raw := `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_191220191020363925",
				"ResultCode": 0,
				"ResultDesc": "The service request is processed successfully.",
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": 250.00},
						{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
						{"Name": "TransactionDate", "Value": 20191219102115},
						{"Name": "PhoneNumber", "Value": 254712345678}
					]
				}
			}
		}
	}`
	var cb Callback
	require.NoError(t, json.Unmarshal([]byte(raw), &cb))

	result := cb.ParseCallback()
	assert.True(t, result.Success)
	assert.Equal(t, "ws_CO_191220191020363925", result.CheckoutRequestID)
	require.NotNil(t, result.ReceiptNumber)
	assert.Equal(t, "NLJ7RT61SV", *result.ReceiptNumber)
	require.NotNil(t, result.Amount)
	assert.Equal(t, 250.0, *result.Amount)
	require.NotNil(t, result.TransactionDate)
	assert.False(t, cb.Cancelled())
}

func TestParseCallbackCancelled(t *testing.T) {
	raw := `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_cancelled",
				"ResultCode": 1032,
				"ResultDesc": "Request cancelled by user"
			}
		}
	}`
	var cb Callback
	require.NoError(t, json.Unmarshal([]byte(raw), &cb))

	result := cb.ParseCallback()
	assert.False(t, result.Success)
	assert.True(t, cb.Cancelled())
	assert.Nil(t, result.ReceiptNumber)
}
