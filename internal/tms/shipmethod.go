package tms

// ShipMethod is a NetSuite shipping option a carrier service maps onto.
type ShipMethod struct {
	ServiceType string
	ID          int
	Display     string
}

// shipMethods is the closed carrier-service → NetSuite ship-method table.
// Services outside this table can be shown to the operator but never written
// back to the ERP.
var shipMethods = map[string]ShipMethod{
	"FEDEX_GROUND":                 {ServiceType: "FEDEX_GROUND", ID: 36, Display: "Fed Ex Ground"},
	"FEDEX_EXPRESS_SAVER":          {ServiceType: "FEDEX_EXPRESS_SAVER", ID: 3655, Display: "Fed Ex Express Saver"},
	"FEDEX_2_DAY":                  {ServiceType: "FEDEX_2_DAY", ID: 3657, Display: "Fed Ex 2Day"},
	"FEDEX_2_DAY_AM":               {ServiceType: "FEDEX_2_DAY_AM", ID: 3656, Display: "Fed Ex 2Day AM"},
	"STANDARD_OVERNIGHT":           {ServiceType: "STANDARD_OVERNIGHT", ID: 3, Display: "FedEx Standard Overnight"},
	"PRIORITY_OVERNIGHT":           {ServiceType: "PRIORITY_OVERNIGHT", ID: 3652, Display: "Fed Ex Priority Overnight"},
	"FIRST_OVERNIGHT":              {ServiceType: "FIRST_OVERNIGHT", ID: 3654, Display: "Fed Ex First Overnight"},
	"FEDEX_INTERNATIONAL_PRIORITY": {ServiceType: "FEDEX_INTERNATIONAL_PRIORITY", ID: 7803, Display: "Fed Ex International Priority"},
	"FEDEX_INTERNATIONAL_GROUND":   {ServiceType: "FEDEX_INTERNATIONAL_GROUND", ID: 8993, Display: "FedEx International Ground"},
	"FEDEX_INTERNATIONAL_ECONOMY":  {ServiceType: "FEDEX_INTERNATIONAL_ECONOMY", ID: 7647, Display: "FedEx International Economy"},
	"FEDEX_FREIGHT_ECONOMY":        {ServiceType: "FEDEX_FREIGHT_ECONOMY", ID: 16836, Display: "FedEx Freight Economy"},
	"FEDEX_FREIGHT_PRIORITY":       {ServiceType: "FEDEX_FREIGHT_PRIORITY", ID: 16839, Display: "FedEx Freight Priority"},
}

// MapService translates a carrier service type to its NetSuite ship method.
// The second return is false for services outside the closed table.
func MapService(serviceType string) (ShipMethod, bool) {
	method, ok := shipMethods[serviceType]
	return method, ok
}
