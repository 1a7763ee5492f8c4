package v16

// OCPP 1.6 message type identifiers.
const (
	CallMessage       = 2
	CallResultMessage = 3
	CallErrorMessage  = 4
)

// CallError codes used by this server.
const (
	ErrorCodeNotImplemented     = "NotImplemented"
	ErrorCodeFormationViolation = "FormationViolation"
	ErrorCodeInternalError      = "InternalError"
	ErrorCodeProtocolError      = "ProtocolError"
)

type bootNotificationReq struct {
	ChargePointVendor string `json:"chargePointVendor"`
	ChargePointModel  string `json:"chargePointModel"`
	ChargePointSerial string `json:"chargePointSerialNumber,omitempty"`
	FirmwareVersion   string `json:"firmwareVersion,omitempty"`
}

type bootNotificationResp struct {
	Status      string `json:"status"`
	CurrentTime string `json:"currentTime"`
	Interval    int    `json:"interval"`
}

type heartbeatResp struct {
	CurrentTime string `json:"currentTime"`
}

type authorizeReq struct {
	IdTag string `json:"idTag"`
}

type idTagInfo struct {
	Status string `json:"status"`
}

type authorizeResp struct {
	IdTagInfo idTagInfo `json:"idTagInfo"`
}

type startTransactionReq struct {
	ConnectorId   int    `json:"connectorId"`
	IdTag         string `json:"idTag"`
	MeterStart    int    `json:"meterStart"`
	Timestamp     string `json:"timestamp"`
	ReservationId *int   `json:"reservationId,omitempty"`
}

type startTransactionResp struct {
	TransactionId int64     `json:"transactionId"`
	IdTagInfo     idTagInfo `json:"idTagInfo"`
}

type stopTransactionReq struct {
	TransactionId int64  `json:"transactionId"`
	MeterStop     int    `json:"meterStop"`
	Timestamp     string `json:"timestamp"`
	IdTag         string `json:"idTag,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

type stopTransactionResp struct {
	IdTagInfo idTagInfo `json:"idTagInfo"`
}

type sampledValue struct {
	Value     string `json:"value"`
	Measurand string `json:"measurand,omitempty"`
	Unit      string `json:"unit,omitempty"`
	Context   string `json:"context,omitempty"`
	Location  string `json:"location,omitempty"`
}

type meterValue struct {
	Timestamp    string         `json:"timestamp"`
	SampledValue []sampledValue `json:"sampledValue"`
}

type meterValuesReq struct {
	ConnectorId   int          `json:"connectorId"`
	TransactionId *int64       `json:"transactionId,omitempty"`
	MeterValue    []meterValue `json:"meterValue"`
}

type statusNotificationReq struct {
	ConnectorId     int    `json:"connectorId"`
	ErrorCode       string `json:"errorCode"`
	Status          string `json:"status"`
	Timestamp       string `json:"timestamp,omitempty"`
	VendorErrorCode string `json:"vendorErrorCode,omitempty"`
}
