// Package soap renders products inside a fixed SOAP 1.1 envelope and parses
// that envelope back.
package soap

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"

	"github.com/micaaprocofio/ut5-tfu/internal/domain"
)

const (
	EnvelopeNamespace = "http://schemas.xmlsoap.org/soap/envelope/"
	ContentType       = "text/xml"
)

var ErrNoProduct = errors.New("envelope carries no product")

type productXML struct {
	XMLName xml.Name `xml:"product"`
	ID      int64    `xml:"id"`
	Name    string   `xml:"name"`
	Price   string   `xml:"price"`
	Stock   int      `xml:"stock"`
}

type productsXML struct {
	XMLName  xml.Name     `xml:"products"`
	Products []productXML `xml:"product"`
}

type envelopeOut struct {
	XMLName   xml.Name `xml:"soap:Envelope"`
	Namespace string   `xml:"xmlns:soap,attr"`
	Body      bodyOut  `xml:"soap:Body"`
}

type bodyOut struct {
	Product  *productXML  `xml:"product,omitempty"`
	Products *productsXML `xml:"products,omitempty"`
}

// Decoding matches on local names, so the soap prefix resolves to any namespace.
type envelopeIn struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Product  *productXML  `xml:"product"`
		Products *productsXML `xml:"products"`
	} `xml:"Body"`
}

func EncodeProduct(p domain.Product) ([]byte, error) {
	item := toXML(p)
	return encode(bodyOut{Product: &item})
}

func EncodeProducts(products []domain.Product) ([]byte, error) {
	list := &productsXML{Products: make([]productXML, 0, len(products))}
	for _, p := range products {
		list.Products = append(list.Products, toXML(p))
	}
	return encode(bodyOut{Products: list})
}

func DecodeProduct(data []byte) (domain.Product, error) {
	env, err := decode(data)
	if err != nil {
		return domain.Product{}, err
	}
	if env.Body.Product == nil {
		return domain.Product{}, ErrNoProduct
	}
	return fromXML(*env.Body.Product)
}

func DecodeProducts(data []byte) ([]domain.Product, error) {
	env, err := decode(data)
	if err != nil {
		return nil, err
	}
	if env.Body.Products == nil {
		return nil, ErrNoProduct
	}

	products := make([]domain.Product, 0, len(env.Body.Products.Products))
	for _, item := range env.Body.Products.Products {
		p, err := fromXML(item)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func encode(body bodyOut) ([]byte, error) {
	out, err := xml.Marshal(envelopeOut{Namespace: EnvelopeNamespace, Body: body})
	if err != nil {
		return nil, fmt.Errorf("marshal soap envelope: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

func decode(data []byte) (*envelopeIn, error) {
	var env envelopeIn
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal soap envelope: %w", err)
	}
	return &env, nil
}

func toXML(p domain.Product) productXML {
	return productXML{
		ID:    p.ID,
		Name:  p.Name,
		Price: strconv.FormatFloat(p.Price, 'f', -1, 64),
		Stock: p.Stock,
	}
}

func fromXML(item productXML) (domain.Product, error) {
	price, err := strconv.ParseFloat(item.Price, 64)
	if err != nil {
		return domain.Product{}, fmt.Errorf("parse price %q: %w", item.Price, err)
	}
	return domain.Product{
		ID:    item.ID,
		Name:  item.Name,
		Price: price,
		Stock: item.Stock,
	}, nil
}
