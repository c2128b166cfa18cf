package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionForPostcode(t *testing.T) {
	tests := []struct {
		postcode string
		want     string
	}{
		{"SW1A 1AA", "London"},
		{"EH1 1AA", "Scotland"},
		{"ec2a 4bx", "London"},
		{"M1 1AE", "North West"},
		{"B33 8TH", "Midlands"},
		{"CF10 1EP", "Wales"},
		{"BT1 5GS", "Northern Ireland"},
		{"LS1 4DY", "North East"},
		{"GU16 7HF", "South East"},
		{"PL4 8AA", "South West"},
		{"  G2 8DL ", "Scotland"},
		{"", RegionUnknown},
		{"12345", RegionUnknown},
		{"XX1 1XX", RegionUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.postcode, func(t *testing.T) {
			assert.Equal(t, tt.want, RegionForPostcode(tt.postcode))
		})
	}
}

func TestDeriveRegion_ShippingBeforeBilling(t *testing.T) {
	c := Customer{
		Billing:  Address{Postcode: "EH1 1AA"},
		Shipping: Address{Postcode: "SW1A 1AA"},
	}
	c.DeriveRegion()
	assert.Equal(t, "London", c.LocationRegion)

	c.Shipping.Postcode = ""
	c.DeriveRegion()
	assert.Equal(t, "Scotland", c.LocationRegion)
}

func TestCustomerName(t *testing.T) {
	c := Customer{Type: TypeIndividual, FirstName: "Rory", LastName: "Macdonald"}
	assert.Equal(t, "Rory Macdonald", c.Name())

	c = Customer{Type: TypeBusiness, CompanyName: "Fairway Golf Ltd", FirstName: "A", LastName: "B"}
	assert.Equal(t, "Fairway Golf Ltd", c.Name())
}

func TestValidate_RequiresEmail(t *testing.T) {
	c := Customer{}
	assert.ErrorIs(t, c.Validate(), ErrMissingEmail)

	c.Email = "golfer@example.com"
	assert.NoError(t, c.Validate())
	assert.Equal(t, TypeIndividual, c.Type)
}
