package soap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micaaprocofio/ut5-tfu/internal/domain"
)

func TestEncodeProduct(t *testing.T) {
	out, err := EncodeProduct(domain.Product{ID: 1, Name: "Laptop", Price: 1200.5, Stock: 5})
	require.NoError(t, err)

	body := string(out)
	assert.True(t, strings.HasPrefix(body, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, body, `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">`)
	assert.Contains(t, body, `<soap:Body><product>`)
	assert.Contains(t, body, `<id>1</id><name>Laptop</name><price>1200.5</price><stock>5</stock>`)
	assert.True(t, strings.HasSuffix(body, `</product></soap:Body></soap:Envelope>`))
	assert.NotContains(t, body, "<products>")
}

func TestEncodeProduct_PriceFormatting(t *testing.T) {
	tests := []struct {
		price    float64
		expected string
	}{
		{price: 5, expected: "<price>5</price>"},
		{price: 0.1, expected: "<price>0.1</price>"},
		{price: -3.25, expected: "<price>-3.25</price>"},
		{price: 1e21, expected: "<price>1000000000000000000000</price>"},
	}

	for _, tt := range tests {
		out, err := EncodeProduct(domain.Product{ID: 1, Name: "x", Price: tt.price})
		require.NoError(t, err)
		assert.Contains(t, string(out), tt.expected)
	}
}

func TestEncodeProduct_EscapesName(t *testing.T) {
	out, err := EncodeProduct(domain.Product{ID: 2, Name: `Fish & <Chips>`, Price: 3, Stock: 1})
	require.NoError(t, err)

	assert.Contains(t, string(out), "<name>Fish &amp; &lt;Chips&gt;</name>")

	decoded, err := DecodeProduct(out)
	require.NoError(t, err)
	assert.Equal(t, `Fish & <Chips>`, decoded.Name)
}

func TestEncodeProducts(t *testing.T) {
	t.Run("wraps each product", func(t *testing.T) {
		products := []domain.Product{
			{ID: 1, Name: "Laptop", Price: 1200.5, Stock: 5},
			{ID: 2, Name: "Mouse", Price: 25, Stock: 40},
		}

		out, err := EncodeProducts(products)
		require.NoError(t, err)

		body := string(out)
		assert.Contains(t, body, "<soap:Body><products><product><id>1</id>")
		assert.Equal(t, 2, strings.Count(body, "<product>"))

		decoded, err := DecodeProducts(out)
		require.NoError(t, err)
		assert.Equal(t, products, decoded)
	})

	t.Run("empty list keeps the wrapper", func(t *testing.T) {
		out, err := EncodeProducts(nil)
		require.NoError(t, err)
		assert.Contains(t, string(out), "<products></products>")

		decoded, err := DecodeProducts(out)
		require.NoError(t, err)
		assert.Empty(t, decoded)
	})
}

func TestRoundTrip(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Name: "Laptop", Price: 1200.5, Stock: 5},
		{ID: 99, Name: "Cable USB-C 2m", Price: 0.3, Stock: 0},
		{ID: 7, Name: "Refurbished", Price: -10, Stock: -1},
		{ID: 8, Name: "Olé ñandú", Price: 123456.789, Stock: 1000000},
	}

	for _, p := range products {
		out, err := EncodeProduct(p)
		require.NoError(t, err)

		decoded, err := DecodeProduct(out)
		require.NoError(t, err)
		assert.Equal(t, p, decoded)
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Run("not xml", func(t *testing.T) {
		_, err := DecodeProduct([]byte(`{"id":1}`))
		require.Error(t, err)
	})

	t.Run("list envelope is not a single product", func(t *testing.T) {
		out, err := EncodeProducts([]domain.Product{{ID: 1}})
		require.NoError(t, err)

		_, err = DecodeProduct(out)
		require.ErrorIs(t, err, ErrNoProduct)
	})

	t.Run("bad price", func(t *testing.T) {
		doc := `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body>` +
			`<product><id>1</id><name>a</name><price>cheap</price><stock>1</stock></product></soap:Body></soap:Envelope>`
		_, err := DecodeProduct([]byte(doc))
		require.Error(t, err)
	})
}
