package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/rfq-portal/internal/application/dispatcher"
	"github.com/garyjia/rfq-portal/internal/application/port"
	"github.com/garyjia/rfq-portal/internal/domain/deadline"
	"github.com/garyjia/rfq-portal/internal/domain/entity"
	"github.com/garyjia/rfq-portal/internal/domain/event"
	"github.com/garyjia/rfq-portal/internal/domain/quotation"
	"github.com/garyjia/rfq-portal/internal/domain/servicedate"
	"github.com/garyjia/rfq-portal/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

const (
	dataSetSuppliers  = "suppliers"
	dataSetQuotations = "quotations"
)

// PortalService drives the supplier quotation browsing screen
type PortalService interface {
	// LoadSuppliers fetches the supplier list. Failures become notices.
	LoadSuppliers(ctx context.Context) PortalState

	// SelectSupplier sets or clears (nil) the selection and loads quotations when it changed
	SelectSupplier(ctx context.Context, supplier *entity.Supplier) PortalState
	SelectSupplierByID(ctx context.Context, id string) (PortalState, error)
	SelectSupplierByName(ctx context.Context, name string) (PortalState, error)
	ClearSupplier(ctx context.Context) PortalState

	// RefreshQuotations reloads quotations for the current selection
	RefreshQuotations(ctx context.Context) (PortalState, error)

	OpenSelector() PortalState
	CloseSelector() PortalState
	SetSearch(text string) PortalState
	FilteredSuppliers() []entity.Supplier

	Snapshot() PortalState
	Quotations() []QuotationView
	OpenQuotation(referenceNo string) (*entity.DetailsPayload, error)
	ExportQuotations() ([]byte, error)
}

type portalServiceImpl struct {
	data       port.DataService
	notifier   port.Notifier
	events     dispatcher.Dispatcher
	classifier *deadline.Classifier
	exporter   port.QuotationExporter
	cfg        PortalConfig
	logger     Logger

	mu             sync.Mutex
	suppliers      []entity.Supplier
	supplierLoad   *workflow.Machine
	supplierToken  uint64
	selected       *entity.Supplier
	search         string
	selectorOpen   bool
	quotations     []entity.QuotationGroup
	quotationLoad  *workflow.Machine
	quotationToken uint64
}

// NewPortalService creates a new PortalService. events and exporter may be nil.
func NewPortalService(
	data port.DataService,
	notifier port.Notifier,
	events dispatcher.Dispatcher,
	classifier *deadline.Classifier,
	exporter port.QuotationExporter,
	cfg PortalConfig,
	logger Logger,
) PortalService {
	if classifier == nil {
		classifier = deadline.NewClassifier()
	}
	return &portalServiceImpl{
		data:          data,
		notifier:      notifier,
		events:        events,
		classifier:    classifier,
		exporter:      exporter,
		cfg:           cfg.withDefaults(),
		logger:        logger,
		supplierLoad:  workflow.NewLoadMachine(),
		quotationLoad: workflow.NewLoadMachine(),
	}
}

// LoadSuppliers fetches the supplier master list
func (s *portalServiceImpl) LoadSuppliers(ctx context.Context) PortalState {
	s.mu.Lock()
	s.supplierToken++
	token := s.supplierToken
	s.fire(s.supplierLoad, workflow.TriggerLoad)
	s.mu.Unlock()

	s.logger.Info("Fetching suppliers", "model", s.cfg.SupplierModel, "token", token)
	records, err := s.data.GetData(ctx, s.cfg.SupplierModel, "", "")

	s.mu.Lock()
	if token != s.supplierToken {
		state := s.snapshotLocked()
		s.mu.Unlock()
		s.discarded(ctx, dataSetSuppliers, token)
		return state
	}

	suppliers := make([]entity.Supplier, 0, len(records))
	for _, r := range records {
		if r != nil {
			suppliers = append(suppliers, entity.NewSupplier(r))
		}
	}

	var notice *entity.Notice
	var evt *event.Event
	switch {
	case err != nil:
		s.fire(s.supplierLoad, workflow.TriggerFail)
		s.suppliers = nil
		notice = newNotice(entity.NoticeKindError, "Failed to fetch suppliers",
			errorText(err, "An error occurred while fetching suppliers."))
		evt = event.NewEvent(event.TypeLoadFailed, map[string]interface{}{
			event.KeyDataSet: dataSetSuppliers,
			event.KeyError:   err.Error(),
		})
	case len(suppliers) == 0:
		// Rows that are all null count as an empty result
		s.fire(s.supplierLoad, workflow.TriggerSucceed)
		s.suppliers = []entity.Supplier{}
		notice = newNotice(entity.NoticeKindError, "No suppliers found", "The server returned no supplier data.")
		evt = event.NewEvent(event.TypeSuppliersLoaded, map[string]interface{}{event.KeyCount: 0})
	default:
		s.fire(s.supplierLoad, workflow.TriggerSucceed)
		s.suppliers = suppliers
		evt = event.NewEvent(event.TypeSuppliersLoaded, map[string]interface{}{event.KeyCount: len(suppliers)})
	}
	state := s.snapshotLocked()
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Failed to fetch suppliers", "error", err)
	} else {
		s.logger.Info("Suppliers loaded", "count", len(state.Suppliers))
	}
	s.notify(ctx, notice)
	s.publish(ctx, evt)
	return state
}

// SelectSupplier updates the selection. Reselecting the current supplier does not refetch.
func (s *portalServiceImpl) SelectSupplier(ctx context.Context, supplier *entity.Supplier) PortalState {
	s.mu.Lock()
	s.search = ""
	s.selectorOpen = false

	if sameSupplier(s.selected, supplier) {
		state := s.snapshotLocked()
		s.mu.Unlock()
		return state
	}

	if supplier == nil {
		s.selected = nil
		s.clearQuotationsLocked()
		state := s.snapshotLocked()
		s.mu.Unlock()

		s.logger.Info("Supplier selection cleared")
		s.publish(ctx, event.NewEvent(event.TypeSelectionChanged, map[string]interface{}{event.KeySupplierID: ""}))
		return state
	}

	cp := *supplier
	s.selected = &cp
	s.mu.Unlock()

	s.logger.Info("Supplier selected", "supplier_id", cp.ID, "supplier_name", cp.Name)
	s.publish(ctx, event.NewEvent(event.TypeSelectionChanged, map[string]interface{}{event.KeySupplierID: cp.ID}))
	return s.loadQuotations(ctx)
}

// SelectSupplierByID selects a loaded supplier by its identifier
func (s *portalServiceImpl) SelectSupplierByID(ctx context.Context, id string) (PortalState, error) {
	return s.selectWhere(ctx, func(sup entity.Supplier) bool {
		return sup.ID == id || sup.QueryID() == strings.TrimSpace(id)
	}, id)
}

// SelectSupplierByName selects a loaded supplier by display name. An unknown
// name clears the selection.
func (s *portalServiceImpl) SelectSupplierByName(ctx context.Context, name string) (PortalState, error) {
	return s.selectWhere(ctx, func(sup entity.Supplier) bool {
		return sup.Name == name
	}, name)
}

func (s *portalServiceImpl) selectWhere(ctx context.Context, match func(entity.Supplier) bool, key string) (PortalState, error) {
	s.mu.Lock()
	var found *entity.Supplier
	for i := range s.suppliers {
		if match(s.suppliers[i]) {
			sup := s.suppliers[i]
			found = &sup
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		s.logger.Info("No supplier found for selection", "key", key)
		return s.SelectSupplier(ctx, nil), fmt.Errorf("%w: %s", ErrSupplierNotFound, key)
	}
	return s.SelectSupplier(ctx, found), nil
}

// ClearSupplier clears the selection and the displayed quotations
func (s *portalServiceImpl) ClearSupplier(ctx context.Context) PortalState {
	return s.SelectSupplier(ctx, nil)
}

// RefreshQuotations reloads quotations for the selected supplier
func (s *portalServiceImpl) RefreshQuotations(ctx context.Context) (PortalState, error) {
	s.mu.Lock()
	selected := s.selected != nil
	s.mu.Unlock()

	if !selected {
		return s.Snapshot(), ErrNoSupplierSelected
	}
	return s.loadQuotations(ctx), nil
}

func (s *portalServiceImpl) loadQuotations(ctx context.Context) PortalState {
	s.mu.Lock()
	if s.selected == nil {
		state := s.snapshotLocked()
		s.mu.Unlock()
		return state
	}
	supplier := *s.selected
	vendorID := supplier.QueryID()

	if vendorID == "" {
		s.clearQuotationsLocked()
		state := s.snapshotLocked()
		s.mu.Unlock()
		s.logger.Info("Supplier has no usable identifier, skipping quotation fetch", "supplier_name", supplier.Name)
		return state
	}

	s.quotationToken++
	token := s.quotationToken
	s.fire(s.quotationLoad, workflow.TriggerLoad)
	s.mu.Unlock()

	where := vendorFilter(s.cfg.VendorColumn, vendorID)
	s.logger.Info("Fetching quotations", "model", s.cfg.QuotationModel, "where", where, "token", token)
	records, err := s.data.GetData(ctx, s.cfg.QuotationModel, where, "")

	s.mu.Lock()
	if token != s.quotationToken {
		state := s.snapshotLocked()
		s.mu.Unlock()
		s.discarded(ctx, dataSetQuotations, token)
		return state
	}

	var notice *entity.Notice
	var evt *event.Event
	switch {
	case err != nil:
		s.fire(s.quotationLoad, workflow.TriggerFail)
		s.quotations = nil
		notice = newNotice(entity.NoticeKindError, "Failed to fetch quotations",
			errorText(err, "An error occurred while fetching quotations."))
		evt = event.NewEvent(event.TypeLoadFailed, map[string]interface{}{
			event.KeyDataSet:    dataSetQuotations,
			event.KeySupplierID: vendorID,
			event.KeyError:      err.Error(),
		})
	case len(records) == 0:
		s.fire(s.quotationLoad, workflow.TriggerSucceed)
		s.quotations = nil
		notice = newNotice(entity.NoticeKindWarning, "No quotations found",
			fmt.Sprintf("No quotations found for supplier %s (ID: %s).", supplier.Name, vendorID))
		evt = event.NewEvent(event.TypeQuotationsLoaded, map[string]interface{}{
			event.KeySupplierID: vendorID,
			event.KeyCount:      0,
		})
	default:
		s.fire(s.quotationLoad, workflow.TriggerSucceed)
		s.quotations = quotation.Group(records)
		evt = event.NewEvent(event.TypeQuotationsLoaded, map[string]interface{}{
			event.KeySupplierID: vendorID,
			event.KeyCount:      len(s.quotations),
		})
	}
	state := s.snapshotLocked()
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Failed to fetch quotations", "error", err, "supplier_id", vendorID)
	} else {
		s.logger.Info("Quotations loaded", "supplier_id", vendorID,
			"groups", len(state.Quotations), "items", quotation.TotalItems(state.Quotations))
	}
	s.notify(ctx, notice)
	s.publish(ctx, evt)
	return state
}

// clearQuotationsLocked empties the list and invalidates any in-flight fetch
func (s *portalServiceImpl) clearQuotationsLocked() {
	s.quotationToken++
	s.quotations = nil
	s.fire(s.quotationLoad, workflow.TriggerReset)
}

func (s *portalServiceImpl) OpenSelector() PortalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectorOpen = true
	return s.snapshotLocked()
}

func (s *portalServiceImpl) CloseSelector() PortalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectorOpen = false
	return s.snapshotLocked()
}

func (s *portalServiceImpl) SetSearch(text string) PortalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = text
	return s.snapshotLocked()
}

// FilteredSuppliers returns the suppliers matching the current search text
func (s *portalServiceImpl) FilteredSuppliers() []entity.Supplier {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entity.Supplier, 0, len(s.suppliers))
	for _, sup := range s.suppliers {
		if sup.Matches(s.search) {
			out = append(out, sup)
		}
	}
	return out
}

func (s *portalServiceImpl) Snapshot() PortalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Quotations returns the displayed groups with their deadline classification
func (s *portalServiceImpl) Quotations() []QuotationView {
	s.mu.Lock()
	groups := append([]entity.QuotationGroup(nil), s.quotations...)
	s.mu.Unlock()

	loc := s.classifier.Location()
	views := make([]QuotationView, 0, len(groups))
	for _, g := range groups {
		dl := s.classifier.Classify(g.ExpectedDate())
		views = append(views, QuotationView{
			Quotation:     g,
			ReferenceNo:   g.ReferenceNo(),
			ReferenceDate: servicedate.Format(g.ReferenceDate(), s.cfg.DateLayout, loc),
			ExpectedDate:  servicedate.Format(g.ExpectedDate(), s.cfg.DateLayout, loc),
			Deadline:      dl,
			Urgent:        dl.State.IsUrgent(),
		})
	}
	return views
}

// OpenQuotation builds the details payload for a displayed quotation
func (s *portalServiceImpl) OpenQuotation(referenceNo string) (*entity.DetailsPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.quotations {
		if g.ReferenceNo() != referenceNo {
			continue
		}
		items := make([]entity.Record, 0, len(g.Items))
		for _, item := range g.Items {
			items = append(items, item.WithSerialNo())
		}
		var supplier *entity.Supplier
		if s.selected != nil {
			cp := *s.selected
			supplier = &cp
		}
		return &entity.DetailsPayload{
			Path:      s.cfg.DetailsPathPrefix + url.PathEscape(referenceNo),
			Quotation: g,
			Supplier:  supplier,
			Items:     items,
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrQuotationNotFound, referenceNo)
}

// ExportQuotations renders the displayed quotations with the configured exporter
func (s *portalServiceImpl) ExportQuotations() ([]byte, error) {
	if s.exporter == nil {
		return nil, ErrExportUnavailable
	}

	views := s.Quotations()
	rows := make([]port.QuotationRow, 0, len(views))
	for _, v := range views {
		rows = append(rows, port.QuotationRow{
			Group:         v.Quotation,
			ReferenceDate: v.ReferenceDate,
			ExpectedDate:  v.ExpectedDate,
			Status:        v.Deadline.Status,
			DaysText:      v.Deadline.DaysText,
			Tier:          string(v.Deadline.Tier),
		})
	}

	data, err := s.exporter.Export(rows)
	if err != nil {
		s.logger.Error("Failed to export quotations", "error", err)
		return nil, fmt.Errorf("export quotations: %w", err)
	}
	return data, nil
}

func (s *portalServiceImpl) snapshotLocked() PortalState {
	state := PortalState{
		Suppliers:     append([]entity.Supplier{}, s.suppliers...),
		SupplierLoad:  s.supplierLoad.State(),
		SearchText:    s.search,
		SelectorOpen:  s.selectorOpen,
		Quotations:    append([]entity.QuotationGroup{}, s.quotations...),
		QuotationLoad: s.quotationLoad.State(),
	}
	if s.selected != nil {
		cp := *s.selected
		state.Selected = &cp
		state.SelectorCaption = cp.Label()
	}
	state.Loading = state.SupplierLoad == workflow.StateLoading || state.QuotationLoad == workflow.StateLoading
	state.SelectorLocked = state.Loading
	return state
}

func (s *portalServiceImpl) fire(m *workflow.Machine, trigger workflow.Trigger) {
	if err := m.Fire(trigger); err != nil {
		s.logger.Error("Unexpected load transition", "error", err)
	}
}

func (s *portalServiceImpl) discarded(ctx context.Context, dataSet string, token uint64) {
	s.logger.Info("Discarding stale response", "data_set", dataSet, "token", token)
	if s.events == nil {
		return
	}
	s.events.DispatchAsync(ctx, event.NewEvent(event.TypeResponseDiscarded, map[string]interface{}{
		event.KeyDataSet: dataSet,
		event.KeyToken:   token,
	}))
}

func (s *portalServiceImpl) notify(ctx context.Context, notice *entity.Notice) {
	if notice != nil && s.notifier != nil {
		s.notifier.Notify(ctx, *notice)
	}
}

func (s *portalServiceImpl) publish(ctx context.Context, evt *event.Event) {
	if s.events == nil || evt == nil {
		return
	}
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to publish event", "event_type", evt.Type, "error", err)
	}
}

func sameSupplier(a, b *entity.Supplier) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID && a.Name == b.Name
}

// vendorFilter builds the quotation predicate, doubling quotes inside the literal
func vendorFilter(column, vendorID string) string {
	return fmt.Sprintf("%s = '%s'", column, strings.ReplaceAll(vendorID, "'", "''"))
}

func errorText(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

func newNotice(kind, title, description string) *entity.Notice {
	return &entity.Notice{
		ID:          uuid.NewString(),
		Kind:        kind,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now(),
	}
}
