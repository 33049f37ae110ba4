package dataservice

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/rfq-portal/internal/application/port"
	"github.com/garyjia/rfq-portal/internal/domain/entity"
)

var _ port.DataService = (*SOAPClient)(nil)

const (
	getDataOperation = "DataModel_GetData"
	soapEnvelopeNS   = "http://schemas.xmlsoap.org/soap/envelope/"
	maxResponseBytes = 32 << 20
)

var (
	// ErrSOAPFault is returned when the service answers with a SOAP fault
	ErrSOAPFault = errors.New("soap fault")
	// ErrUnexpectedStatus is returned for non-2xx responses without a fault body
	ErrUnexpectedStatus = errors.New("unexpected http status")
	// ErrMalformedResponse is returned when the envelope or its JSON payload cannot be read
	ErrMalformedResponse = errors.New("malformed data service response")
)

// SOAPConfig configures the SOAP data service client
type SOAPConfig struct {
	URL       string
	Namespace string
	Timeout   time.Duration
}

// SOAPClient calls DataModel_GetData on the backend data service
type SOAPClient struct {
	cfg    SOAPConfig
	http   *http.Client
	logger *zap.Logger
}

// NewSOAPClient creates a SOAP client. A nil httpClient gets one with cfg.Timeout.
func NewSOAPClient(cfg SOAPConfig, httpClient *http.Client, logger *zap.Logger) *SOAPClient {
	if cfg.Namespace == "" {
		cfg.Namespace = "http://tempuri.org/"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SOAPClient{cfg: cfg, http: httpClient, logger: logger}
}

type getDataRequest struct {
	XMLName        xml.Name
	DataModelName  string `xml:"DataModelName"`
	WhereCondition string `xml:"WhereCondition"`
	Orderby        string `xml:"Orderby"`
}

type requestEnvelope struct {
	XMLName xml.Name `xml:"soap:Envelope"`
	SoapNS  string   `xml:"xmlns:soap,attr"`
	Body    struct {
		Request getDataRequest
	} `xml:"soap:Body"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
	Detail string `xml:"detail"`
}

// GetData implements port.DataService
func (c *SOAPClient) GetData(ctx context.Context, model, where, orderBy string) ([]entity.Record, error) {
	body, err := c.buildEnvelope(model, where, orderBy)
	if err != nil {
		return nil, fmt.Errorf("failed to build soap envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", `"`+strings.TrimSuffix(c.cfg.Namespace, "/")+"/"+getDataOperation+`"`)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Data service request failed", zap.String("model", model), zap.Error(err))
		return nil, fmt.Errorf("data service request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	payload, fault, err := parseEnvelope(raw)
	if fault != nil {
		c.logger.Error("Data service returned fault",
			zap.String("model", model),
			zap.String("fault_code", fault.Code),
			zap.String("fault_string", fault.String))
		return nil, fmt.Errorf("%w: %s", ErrSOAPFault, faultMessage(fault))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(payload)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Data service call completed",
		zap.String("model", model),
		zap.Int("records", len(records)),
		zap.Duration("elapsed", time.Since(start)))
	return records, nil
}

func (c *SOAPClient) buildEnvelope(model, where, orderBy string) ([]byte, error) {
	env := requestEnvelope{SoapNS: soapEnvelopeNS}
	env.Body.Request = getDataRequest{
		XMLName:        xml.Name{Space: c.cfg.Namespace, Local: getDataOperation},
		DataModelName:  model,
		WhereCondition: where,
		Orderby:        orderBy,
	}
	out, err := xml.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// parseEnvelope walks the response body and returns the text of the first
// *Result element, or the fault when one is present.
func parseEnvelope(raw []byte) (string, *soapFault, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return "", nil, fmt.Errorf("%w: no result element", ErrMalformedResponse)
		}
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch {
		case start.Name.Local == "Fault":
			var f soapFault
			if err := dec.DecodeElement(&f, &start); err != nil {
				return "", nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
			}
			return "", &f, nil
		case strings.HasSuffix(start.Name.Local, "Result"):
			var text string
			if err := dec.DecodeElement(&text, &start); err != nil {
				return "", nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
			}
			return text, nil, nil
		}
	}
}

// decodeRecords reads the JSON payload. Anything other than an array of
// objects yields an empty list.
func decodeRecords(payload string) ([]entity.Record, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return []entity.Record{}, nil
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	records, ok := entity.RecordsFrom(v)
	if !ok {
		return []entity.Record{}, nil
	}
	return records, nil
}

func faultMessage(f *soapFault) string {
	msg := strings.TrimSpace(f.String)
	if msg == "" {
		msg = strings.TrimSpace(f.Code)
	}
	return msg
}
