package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPascalCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"user_info", "UserInfo"},
		{"full-admin", "FullAdmin"},
		{"hello world", "HelloWorld"},
		{"USER_ID", "USERID"},
		{"userId", "UserId"},
		{"HTTPServer", "HTTPServer"},
		{"ab9cd", "Ab9Cd"},
		{"code_2fa", "Code2Fa"},
		{"a.b/c", "Abc"},
		{"__leading__trailing__", "LeadingTrailing"},
		{"éclair", "éclair"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToPascalCase(tt.input, false, false))
		})
	}
}

func TestToPascalCaseStrict(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ABC", "Abc"},
		{"USER_ID", "UserId"},
		{"HTTPServer", "HttpServer"},
		{"ABCDef", "AbcDef"},
		{"ABC1", "Abc1"},
		{"AB12", "Ab12"},
		{"userId", "UserId"},
		{"XMLHttpRequest", "XmlHttpRequest"},
		{"MyURL", "MyUrl"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToPascalCase(tt.input, true, false))
		})
	}
}

func TestToPascalCaseStrictIfUppercase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"USER_ID", "UserId"},
		{"CODE", "Code"},
		{"HTTPServer", "HTTPServer"},
		{"userId", "UserId"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToPascalCase(tt.input, false, true))
		})
	}
}

func TestToCamelCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"user_id", "userId"},
		{"UserId", "userId"},
		{"HTTPServer", "hTTPServer"},
		{"first name", "firstName"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToCamelCase(tt.input, false, false))
		})
	}

	t.Run("strict if uppercase", func(t *testing.T) {
		assert.Equal(t, "userId", ToCamelCase("USER_ID", false, true))
	})
}

func TestCamelIdempotence(t *testing.T) {
	inputs := []string{"user_id", "UserId", "HTTPServer", "my-prop-2", "order line", "USER_ID", "a", "ab9cd"}
	for _, s := range inputs {
		t.Run(s, func(t *testing.T) {
			assert.Equal(t, ToCamelCase(s, false, false), ToCamelCase(ToPascalCase(s, false, false), false, false))
		})
	}
}

func TestToConstantCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"userId", "USER_ID"},
		{"HTTPServer", "HTTP_SERVER"},
		{"myProp2", "MY_PROP_2"},
		{"MyClassName", "MY_CLASS_NAME"},
		{"USER_ID", "USER_ID"},
		{"DocumentId", "DOCUMENT_ID"},
		{"Id", "ID"},
		{"A", "A"},
		{"ABc", "A_BC"},
		{"already_snake", "ALREADY_SNAKE"},
		{"Billing", "BILLING"},
		{"Code2Fa", "CODE_2_FA"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToConstantCase(tt.input))
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"userId", "user_id"},
		{"HTTPServer", "http_server"},
		{"OrderLine", "order_line"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToSnakeCase(tt.input))
		})
	}
}

func TestToKebabCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"MyClassName", "my-class-name"},
		{"OrderLine", "order-line"},
		{"userId", "user-id"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToKebabCase(tt.input))
		})
	}
}

func TestFirstCase(t *testing.T) {
	assert.Equal(t, "", ToFirstUpper(""))
	assert.Equal(t, "", ToFirstLower(""))
	assert.Equal(t, "Order", ToFirstUpper("order"))
	assert.Equal(t, "order", ToFirstLower("Order"))
	assert.Equal(t, "Éclair", ToFirstUpper("éclair"))
}

func TestPlural(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"Order", "Orders"},
		{"Category", "Categories"},
		{"OrderLine", "OrderLines"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Plural(tt.input))
		})
	}
}
