package domain

type RegisterType string

const (
	RegisterTypeKiosk  RegisterType = "KIOSK"
	RegisterTypePOS    RegisterType = "POS"
	RegisterTypeOnline RegisterType = "ONLINE"
)

type EftposProvider string

const (
	EftposProviderSmartpay EftposProvider = "SMARTPAY"
	EftposProviderVerifone EftposProvider = "VERIFONE"
	EftposProviderWindcave EftposProvider = "WINDCAVE"
	EftposProviderTyro     EftposProvider = "TYRO"
)

type RegisterPrinter struct {
	ID                       string `json:"id" bson:"id"`
	Name                     string `json:"name" bson:"name"`
	Type                     string `json:"type" bson:"type"`
	Address                  string `json:"address" bson:"address"`
	CustomerPrinter          bool   `json:"customerPrinter" bson:"customerPrinter"`
	KitchenPrinter           bool   `json:"kitchenPrinter" bson:"kitchenPrinter"`
	PrintAllOrderReceipts    bool   `json:"printAllOrderReceipts" bson:"printAllOrderReceipts"`
	PrintOnlineOrderReceipts bool   `json:"printOnlineOrderReceipts" bson:"printOnlineOrderReceipts"`
}

// Register is the runtime configuration of one kiosk/POS device, fetched from
// the backend at startup and selected by the locally persisted register key.
type Register struct {
	ID                        string            `json:"id" bson:"id"`
	Key                       string            `json:"key" bson:"key"`
	RestaurantID              string            `json:"restaurantId" bson:"restaurantId"`
	Name                      string            `json:"name" bson:"name"`
	Type                      RegisterType      `json:"type" bson:"type"`
	EftposProvider            EftposProvider    `json:"eftposProvider" bson:"eftposProvider"`
	EftposIPAddress           string            `json:"eftposIpAddress" bson:"eftposIpAddress"`
	EftposPort                string            `json:"eftposPort" bson:"eftposPort"`
	WindcaveStationID         string            `json:"windcaveStationId" bson:"windcaveStationId"`
	TyroMerchantID            string            `json:"tyroMerchantId" bson:"tyroMerchantId"`
	OrderNumberSuffix         string            `json:"orderNumberSuffix" bson:"orderNumberSuffix"`
	EnablePayLater            bool              `json:"enablePayLater" bson:"enablePayLater"`
	EnableUberEatsPayments    bool              `json:"enableUberEatsPayments" bson:"enableUberEatsPayments"`
	EnableMenulogPayments     bool              `json:"enableMenulogPayments" bson:"enableMenulogPayments"`
	EnableBuzzerNumbers       bool              `json:"enableBuzzerNumbers" bson:"enableBuzzerNumbers"`
	AskToPrintCustomerReceipt bool              `json:"askToPrintCustomerReceipt" bson:"askToPrintCustomerReceipt"`
	Printers                  []RegisterPrinter `json:"printers" bson:"printers"`
}

func (r *Register) IsPOS() bool {
	return r.Type == RegisterTypePOS
}
