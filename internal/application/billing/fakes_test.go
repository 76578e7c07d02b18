package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/facturacion-pro/internal/application/audit"
	"github.com/tu-usuario/facturacion-pro/internal/application/stock"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	dombilling "github.com/tu-usuario/facturacion-pro/internal/domain/billing"
	"github.com/tu-usuario/facturacion-pro/internal/domain/entity"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
	"github.com/tu-usuario/facturacion-pro/pkg/logger"
)

// Implementaciones en memoria de los puertos, compartidas por los tests del paquete.

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

type fakeDocRepo struct {
	docs      map[string]*entity.Document
	lines     map[string][]*entity.LineItem
	sequences map[string]int64
	updateErr error // si no es nil, UpdateBalanceAndState falla con este error
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{
		docs:      make(map[string]*entity.Document),
		lines:     make(map[string][]*entity.LineItem),
		sequences: make(map[string]int64),
	}
}

func (r *fakeDocRepo) Create(doc *entity.Document) error {
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeDocRepo) CreateLine(line *entity.LineItem) error {
	cp := *line
	r.lines[line.DocumentID] = append(r.lines[line.DocumentID], &cp)
	return nil
}

func (r *fakeDocRepo) GetByID(id string) (*entity.Document, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeDocRepo) GetByIDForUpdate(id string) (*entity.Document, error) {
	return r.GetByID(id)
}

func (r *fakeDocRepo) GetLinesByDocumentID(documentID string) ([]*entity.LineItem, error) {
	return r.lines[documentID], nil
}

func (r *fakeDocRepo) UpdateBalanceAndState(doc *entity.Document) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.docs[doc.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != doc.Version {
		return domain.Conflictf("el documento %s cambió por debajo (versión %d vs %d)", doc.ID, stored.Version, doc.Version)
	}
	doc.Version++
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeDocRepo) UpdateSubmission(doc *entity.Document) error {
	stored, ok := r.docs[doc.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Clave = doc.Clave
	stored.Consecutivo = doc.Consecutivo
	stored.SubmissionStatus = doc.SubmissionStatus
	stored.SubmittedAt = doc.SubmittedAt
	stored.AuthorityRef = doc.AuthorityRef
	stored.SubmissionErrors = doc.SubmissionErrors
	return nil
}

func (r *fakeDocRepo) ReplaceLines(documentID string, lines []*entity.LineItem) error {
	replaced := make([]*entity.LineItem, 0, len(lines))
	for _, l := range lines {
		cp := *l
		replaced = append(replaced, &cp)
	}
	r.lines[documentID] = replaced
	return nil
}

func (r *fakeDocRepo) ListByCompany(companyID string, f repository.DocumentFilter) ([]*entity.Document, error) {
	var out []*entity.Document
	for _, doc := range r.docs {
		if doc.CompanyID != companyID {
			continue
		}
		if f.Family != "" && doc.Family != f.Family {
			continue
		}
		if f.State != "" && dombilling.EffectiveState(doc, time.Now()) != f.State {
			continue
		}
		cp := *doc
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeDocRepo) MarkOverdue(today time.Time) (int64, error) {
	var n int64
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	for _, doc := range r.docs {
		if doc.DueDate == nil || !doc.DueDate.Before(day) {
			continue
		}
		if doc.State == entity.StatePendiente || doc.State == entity.StateParcial {
			doc.State = entity.StateVencida
			n++
		}
	}
	return n, nil
}

func (r *fakeDocRepo) UnmarkOverdue(today time.Time) (int64, error) {
	var n int64
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	for _, doc := range r.docs {
		if doc.State != entity.StateVencida {
			continue
		}
		if doc.DueDate == nil || !doc.DueDate.Before(day) {
			doc.State = dombilling.ClassifyBalance(doc.GrandTotal, doc.Balance)
			n++
		}
	}
	return n, nil
}

func (r *fakeDocRepo) NextSequence(companyID, docType string) (int64, error) {
	key := companyID + "|" + docType
	r.sequences[key]++
	return r.sequences[key], nil
}

type fakePaymentRepo struct {
	payments []*entity.Payment
}

func (r *fakePaymentRepo) Create(p *entity.Payment) error {
	cp := *p
	r.payments = append(r.payments, &cp)
	return nil
}

func (r *fakePaymentRepo) ListByDocumentID(documentID string) ([]*entity.Payment, error) {
	var out []*entity.Payment
	for _, p := range r.payments {
		if p.DocumentID == documentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) SumByDocumentID(documentID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, p := range r.payments {
		if p.DocumentID == documentID {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	m := make(map[string]*entity.Product)
	for _, p := range products {
		m[p.ID] = p
	}
	return &fakeProductRepo{products: m}
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetByIDForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r *fakeProductRepo) AdjustStock(productID string, delta decimal.Decimal) error {
	p, ok := r.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = p.Stock.Add(delta)
	return nil
}

func (r *fakeProductRepo) GetStock(productID string) (decimal.Decimal, error) {
	p, ok := r.products[productID]
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	return p.Stock, nil
}

type fakeClientRepo struct {
	clients map[string]*entity.Client
}

func (r *fakeClientRepo) Create(c *entity.Client) error { r.clients[c.ID] = c; return nil }

func (r *fakeClientRepo) GetByID(id string) (*entity.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (r *fakeClientRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Client, error) {
	var out []*entity.Client
	for _, c := range r.clients {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeProviderRepo struct {
	providers map[string]*entity.Provider
}

func (r *fakeProviderRepo) Create(p *entity.Provider) error { r.providers[p.ID] = p; return nil }

func (r *fakeProviderRepo) GetByID(id string) (*entity.Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (r *fakeProviderRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Provider, error) {
	var out []*entity.Provider
	for _, p := range r.providers {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeCompanyRepo struct {
	companies map[string]*entity.Company
}

func (r *fakeCompanyRepo) GetByID(id string) (*entity.Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

type fakeOverrideRepo struct {
	overrides map[string]*entity.PriceOverride // clave clientID|productID
	byID      map[string]*entity.PriceOverride
}

func newFakeOverrideRepo() *fakeOverrideRepo {
	return &fakeOverrideRepo{
		overrides: make(map[string]*entity.PriceOverride),
		byID:      make(map[string]*entity.PriceOverride),
	}
}

func overrideKey(clientID, productID string) string { return clientID + "|" + productID }

func (r *fakeOverrideRepo) Create(o *entity.PriceOverride) error {
	key := overrideKey(o.ClientID, o.ProductID)
	if _, ok := r.overrides[key]; ok {
		return domain.ErrDuplicate
	}
	r.overrides[key] = o
	r.byID[o.ID] = o
	return nil
}

func (r *fakeOverrideRepo) Update(o *entity.PriceOverride) error {
	r.overrides[overrideKey(o.ClientID, o.ProductID)] = o
	r.byID[o.ID] = o
	return nil
}

func (r *fakeOverrideRepo) Delete(id string) error {
	o, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.overrides, overrideKey(o.ClientID, o.ProductID))
	delete(r.byID, id)
	return nil
}

func (r *fakeOverrideRepo) GetByID(id string) (*entity.PriceOverride, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return o, nil
}

func (r *fakeOverrideRepo) GetByClientAndProduct(clientID, productID string) (*entity.PriceOverride, error) {
	o, ok := r.overrides[overrideKey(clientID, productID)]
	if !ok {
		return nil, nil
	}
	return o, nil
}

func (r *fakeOverrideRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.PriceOverride, error) {
	var out []*entity.PriceOverride
	for _, o := range r.byID {
		if o.CompanyID == companyID {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	entries   []*entity.AuditLogEntry
	appendErr error
}

func (r *fakeAuditRepo) Append(e *entity.AuditLogEntry) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeAuditRepo) ListByRecord(tableName, recordID string, limit, offset int) ([]*entity.AuditLogEntry, error) {
	var out []*entity.AuditLogEntry
	for _, e := range r.entries {
		if e.TableName == tableName && e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeTxRunner ejecuta la función directamente sobre los fakes, sin transacción real.
type fakeTxRunner struct {
	docRepo     *fakeDocRepo
	paymentRepo *fakePaymentRepo
	productRepo *fakeProductRepo
}

func (t *fakeTxRunner) RunBilling(ctx context.Context, fn func(
	docRepo repository.DocumentRepository,
	paymentRepo repository.PaymentRepository,
	productRepo repository.ProductRepository,
) error) error {
	return fn(t.docRepo, t.paymentRepo, t.productRepo)
}

// fakeGateway respuesta programable del API de Hacienda.
type fakeGateway struct {
	ack     *SubmissionAck
	err     error
	payload []byte
	calls   int
}

func (g *fakeGateway) Submit(ctx context.Context, clave string, payload []byte) (*SubmissionAck, error) {
	g.calls++
	g.payload = payload
	if g.err != nil {
		return nil, g.err
	}
	return g.ack, nil
}

type fakeBuilder struct {
	xml []byte
	err error
}

func (b *fakeBuilder) BuildInvoiceXML(p SubmissionPayload) ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.xml, nil
}

type fakeCatalog struct {
	known map[string]*FiscalCodeInfo
	err   error
}

func (c *fakeCatalog) LookupFiscalCode(ctx context.Context, code string) (*FiscalCodeInfo, error) {
	if c.err != nil {
		return nil, c.err
	}
	info, ok := c.known[code]
	if !ok {
		return nil, nil
	}
	return info, nil
}

// billingEnv escenario armado para los tests de casos de uso: una empresa con
// perfil fiscal completo, un cliente, un proveedor y un producto con stock.
type billingEnv struct {
	docRepo      *fakeDocRepo
	paymentRepo  *fakePaymentRepo
	productRepo  *fakeProductRepo
	clientRepo   *fakeClientRepo
	providerRepo *fakeProviderRepo
	companyRepo  *fakeCompanyRepo
	overrideRepo *fakeOverrideRepo
	auditRepo    *fakeAuditRepo
	txRunner     *fakeTxRunner
	recorder     *audit.Recorder
	reconciler   *stock.Reconciler
}

const (
	testCompanyID  = "empresa-1"
	testClientID   = "cliente-1"
	testProviderID = "proveedor-1"
	testProductID  = "producto-1"
	testActor      = "user-1"
)

func newBillingEnv() *billingEnv {
	log := testLogger()
	env := &billingEnv{
		docRepo:     newFakeDocRepo(),
		paymentRepo: &fakePaymentRepo{},
		productRepo: newFakeProductRepo(&entity.Product{
			ID:        testProductID,
			CompanyID: testCompanyID,
			SKU:       "SKU-001",
			Name:      "Café molido 500g",
			Price:     decimal.NewFromInt(1000),
			TaxRate:   decimal.NewFromInt(13),
			CabysCode: "2101500000100",
			Stock:     decimal.NewFromInt(50),
		}),
		clientRepo: &fakeClientRepo{clients: map[string]*entity.Client{
			testClientID: {
				ID: testClientID, CompanyID: testCompanyID, Name: "Cliente Uno",
				IdentificationType: "01", IdentificationNumber: "109870654",
			},
		}},
		providerRepo: &fakeProviderRepo{providers: map[string]*entity.Provider{
			testProviderID: {ID: testProviderID, CompanyID: testCompanyID, Name: "Proveedor Uno"},
		}},
		companyRepo: &fakeCompanyRepo{companies: map[string]*entity.Company{
			testCompanyID: {
				ID: testCompanyID, Name: "Empresa Uno S.A.",
				IdentificationType: "02", IdentificationNumber: "3101123456",
				Sucursal: "1", Terminal: "1", Email: "facturas@empresa.cr",
			},
		}},
		overrideRepo: newFakeOverrideRepo(),
		auditRepo:    &fakeAuditRepo{},
	}
	env.txRunner = &fakeTxRunner{docRepo: env.docRepo, paymentRepo: env.paymentRepo, productRepo: env.productRepo}
	env.recorder = audit.NewRecorder(env.auditRepo, log)
	env.reconciler = stock.NewReconciler(log)
	return env
}

func (env *billingEnv) createUseCase() *CreateDocumentUseCase {
	return NewCreateDocumentUseCase(
		env.txRunner, env.reconciler,
		env.clientRepo, env.providerRepo, env.companyRepo, env.productRepo, env.docRepo,
		NewPricingResolver(env.overrideRepo), env.recorder,
		FiscalParams{Situacion: "1"}, testLogger(),
	)
}

func (env *billingEnv) paymentUseCase() *PaymentUseCase {
	return NewPaymentUseCase(env.txRunner, env.recorder, testLogger())
}

func (env *billingEnv) annulUseCase() *AnnulDocumentUseCase {
	return NewAnnulDocumentUseCase(env.txRunner, env.reconciler, env.recorder, testLogger())
}

func (env *billingEnv) updateLinesUseCase() *UpdateLinesUseCase {
	return NewUpdateLinesUseCase(
		env.txRunner, env.reconciler, env.productRepo,
		NewPricingResolver(env.overrideRepo), env.recorder, testLogger(),
	)
}

func (env *billingEnv) stock(productID string) decimal.Decimal {
	s, _ := env.productRepo.GetStock(productID)
	return s
}
