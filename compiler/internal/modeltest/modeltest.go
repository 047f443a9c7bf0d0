// Package modeltest builds the sample model shared by generator tests.
package modeltest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/modelgen/compiler/domain"
	"github.com/syssam/modelgen/compiler/model"
)

// Domains returns the domain registry of the sample model. Every domain
// implements every target.
func Domains(t testing.TB) *domain.Registry {
	t.Helper()
	ints := func(n int) *int { return &n }
	impls := func(sql, java, ts, golang, gql string) map[string]*domain.Implementation {
		return map[string]*domain.Implementation{
			domain.TargetSQL:     {Type: sql},
			domain.TargetJava:    {Type: java},
			domain.TargetTS:      {Type: ts},
			domain.TargetGo:      {Type: golang},
			domain.TargetGraphQL: {Type: gql},
		}
	}
	listOf := func(m map[string]*domain.Implementation) map[string]*domain.Implementation {
		m[domain.TargetJava].GenericType = "List<{T}>"
		m[domain.TargetJava].Imports = []string{"java.util.List"}
		m[domain.TargetTS].GenericType = "{T}[]"
		m[domain.TargetGo].GenericType = "[]{T}"
		m[domain.TargetGraphQL].GenericType = "[{T}!]"
		return m
	}

	id := &domain.Domain{
		Name:               "DO_ID",
		Label:              "Identifier",
		AutoGeneratedValue: true,
		AsDomains:          map[string]string{domain.AsList: "DO_ID_LIST"},
		Implementations:    impls("int8", "Long", "number", "int64", "ID"),
	}
	code := &domain.Domain{
		Name:            "DO_CODE",
		Length:          ints(10),
		AsDomains:       map[string]string{domain.AsList: "DO_CODE_LIST"},
		Implementations: impls("varchar", "String", "string", "string", "String"),
	}
	label := &domain.Domain{
		Name:            "DO_LIBELLE",
		Length:          ints(100),
		Implementations: impls("varchar", "String", "string", "string", "String"),
	}
	amount := &domain.Domain{
		Name:            "DO_AMOUNT",
		Length:          ints(12),
		Scale:           ints(2),
		Implementations: impls("numeric", "BigDecimal", "number", "float64", "Float"),
	}
	amount.Implementations[domain.TargetJava].Imports = []string{"java.math.BigDecimal"}
	date := &domain.Domain{
		Name:            "DO_DATE",
		Implementations: impls("date", "LocalDate", "string", "time.Time", "String"),
	}
	date.Implementations[domain.TargetJava].Imports = []string{"java.time.LocalDate"}
	date.Implementations[domain.TargetGo].Imports = []string{"time"}
	file := &domain.Domain{
		Name:            "DO_FILE",
		IsMultipart:     true,
		MediaType:       "multipart/form-data",
		Implementations: impls("bytea", "MultipartFile", "File", "[]byte", "String"),
	}
	file.Implementations[domain.TargetJava].Imports = []string{"org.springframework.web.multipart.MultipartFile"}

	r, err := domain.NewRegistry(
		id,
		&domain.Domain{Name: "DO_ID_LIST", Implementations: listOf(impls("int8[]", "Long", "number", "int64", "ID"))},
		code,
		&domain.Domain{Name: "DO_CODE_LIST", Implementations: listOf(impls("varchar[]", "String", "string", "string", "String"))},
		label,
		amount,
		date,
		file,
		&domain.Domain{Name: "DO_LIST", Implementations: listOf(impls("jsonb", "", "", "", ""))},
	)
	require.NoError(t, err)
	return r
}

// Sample is the shared model:
//
//	Sales:        Status (enum reference), Country (reference)
//	Sales.Orders: Order 1-n OrderLine, Order n-1 Status, OrderSearch (DTO)
//	Common:       Audited decorator mixed into Order
//	OrderApi:     getOrder, searchOrders, uploadDocument
type Sample struct {
	Graph *model.Graph

	Status, Country, Order, OrderLine, OrderSearch *model.Class

	StatusCode, StatusLabel, CountryCode   *model.RegularProperty
	OrderID, OrderLabel, OrderAmount       *model.RegularProperty
	OrderLineID, OrderLineQuantity         *model.RegularProperty
	OrderStatus, OrderLines                *model.AssociationProperty
	OrderCreatedAt                         model.Property
	SearchLabel, SearchStatuses            *model.AliasProperty
	SearchLines                            *model.CompositionProperty
	Audited                                *model.Decorator
	GetOrder, SearchOrders, UploadDocument *model.Endpoint
}

// NewSample builds the sample model.
func NewSample(t testing.TB) *Sample {
	t.Helper()
	r := Domains(t)
	g := model.NewGraph(r)
	s := &Sample{Graph: g}
	dom := func(name string) *domain.Domain {
		d, err := r.Resolve(name)
		require.NoError(t, err)
		return d
	}
	class := func(c *model.Class) *model.Class {
		_, err := g.AddClass(c)
		require.NoError(t, err)
		return c
	}
	add := func(owner model.Owner, p model.Property) {
		_, err := g.AddProperty(owner, p)
		require.NoError(t, err)
	}
	regular := func(c *model.Class, name, label, d string, pk, required bool) *model.RegularProperty {
		p := &model.RegularProperty{PropertyBase: model.PropertyBase{
			Name:       name,
			Label:      label,
			Comment:    label + ".",
			PrimaryKey: pk,
			Required:   required || pk,
			Domain:     dom(d),
		}}
		add(model.ClassOwner(c.ID), p)
		return p
	}

	sales := model.Namespace{App: "Shop", Module: "Sales"}
	orders := model.Namespace{App: "Shop", Module: "Sales.Orders"}

	s.Status = class(&model.Class{Name: "Status", Label: "Status", Comment: "Order status.", Namespace: sales, Trigram: "STA", Reference: true, IsPersistent: true})
	s.StatusCode = regular(s.Status, "Code", "Code", "DO_CODE", true, true)
	s.StatusLabel = regular(s.Status, "Label", "Label", "DO_LIBELLE", false, true)
	s.Status.EnumKey = s.StatusCode.ID
	s.Status.DefaultProperty = s.StatusLabel.ID
	s.Status.Values = []model.ClassValue{
		{Name: "Active", Values: map[string]string{"Code": "ACTIVE", "Label": "Active"}},
		{Name: "Closed", Values: map[string]string{"Code": "CLOSED", "Label": "Closed"}},
	}

	s.Country = class(&model.Class{Name: "Country", Label: "Country", Comment: "Country.", Namespace: sales, Reference: true, IsPersistent: true})
	s.CountryCode = regular(s.Country, "CountryCode", "Code", "DO_CODE", true, true)
	s.Country.Values = []model.ClassValue{{Name: "France", Values: map[string]string{"CountryCode": "FR"}}}

	s.OrderLine = class(&model.Class{Name: "OrderLine", Label: "Order line", Comment: "Line of an order.", Namespace: orders, Trigram: "OLI", IsPersistent: true})
	s.OrderLineID = regular(s.OrderLine, "OrderLineId", "Id", "DO_ID", true, true)
	s.OrderLineQuantity = regular(s.OrderLine, "Quantity", "Quantity", "DO_ID", false, true)

	s.Order = class(&model.Class{Name: "Order", Label: "Order", Comment: "Customer order.", Namespace: orders, Trigram: "ORD", IsPersistent: true, Tags: []string{"back"}})
	s.OrderID = regular(s.Order, "OrderId", "Id", "DO_ID", true, true)
	s.OrderLabel = regular(s.Order, "Label", "Label", "DO_LIBELLE", false, true)
	s.OrderAmount = regular(s.Order, "Amount", "Amount", "DO_AMOUNT", false, false)
	s.OrderStatus = &model.AssociationProperty{Association: s.Status.ID, Type: model.ManyToOne}
	s.OrderStatus.Required = true
	add(model.ClassOwner(s.Order.ID), s.OrderStatus)
	s.OrderLines = &model.AssociationProperty{Association: s.OrderLine.ID, Type: model.OneToMany}
	s.OrderLines.Comment = "Lines of the order."
	add(model.ClassOwner(s.Order.ID), s.OrderLines)
	s.Order.UniqueKeys = [][]model.PropertyID{{s.OrderLabel.ID}}

	s.Audited = &model.Decorator{Name: "Audited", Description: "Audit fields.", Namespace: model.Namespace{App: "Shop", Module: "Common"}}
	did := g.AddDecorator(s.Audited)
	createdAt := &model.RegularProperty{PropertyBase: model.PropertyBase{Name: "CreatedAt", Label: "Created at", Comment: "Creation date.", Domain: dom("DO_DATE"), Decorator: did}}
	add(model.DecoratorOwner(did), createdAt)
	s.OrderCreatedAt = g.CloneWithClassOrEndpoint(createdAt, s.Order.ID, 0)
	add(model.ClassOwner(s.Order.ID), s.OrderCreatedAt)
	s.Order.Decorators = []model.DecoratorID{did}

	s.OrderSearch = class(&model.Class{Name: "OrderSearch", Label: "Order search", Comment: "Search criteria.", Namespace: orders, Tags: []string{"front"}})
	s.SearchLabel = &model.AliasProperty{Property: s.OrderLabel.ID}
	add(model.ClassOwner(s.OrderSearch.ID), s.SearchLabel)
	s.SearchStatuses = &model.AliasProperty{Property: s.StatusCode.ID, AsList: true}
	s.SearchStatuses.Name = "Statuses"
	add(model.ClassOwner(s.OrderSearch.ID), s.SearchStatuses)
	s.SearchLines = &model.CompositionProperty{Composition: s.OrderLine.ID}
	s.SearchLines.Name = "Lines"
	s.SearchLines.Label = "Lines"
	s.SearchLines.Comment = "Matching lines."
	s.SearchLines.Domain = dom("DO_LIST")
	add(model.ClassOwner(s.OrderSearch.ID), s.SearchLines)

	endpoint := func(e *model.Endpoint, params []model.Property, returns model.Property) *model.Endpoint {
		e.Namespace = orders
		e.FileName = "OrderApi"
		id := g.AddEndpoint(e)
		for _, p := range params {
			add(model.EndpointOwner(id), p)
		}
		if returns != nil {
			_, err := g.SetReturns(id, returns)
			require.NoError(t, err)
		}
		return e
	}
	orderIDParam := func() model.Property {
		return &model.AliasProperty{Property: s.OrderID.ID}
	}
	single := &model.CompositionProperty{Composition: s.Order.ID}
	single.Name = "Order"
	s.GetOrder = endpoint(&model.Endpoint{Name: "getOrder", Method: "GET", Route: "orders/{orderId}", Description: "Loads an order."},
		[]model.Property{orderIDParam()}, single)

	criteria := &model.CompositionProperty{Composition: s.OrderSearch.ID}
	criteria.Name = "Criteria"
	criteria.Required = true
	list := &model.CompositionProperty{Composition: s.Order.ID}
	list.Name = "Orders"
	list.Domain = dom("DO_LIST")
	s.SearchOrders = endpoint(&model.Endpoint{Name: "searchOrders", Method: "POST", Route: "orders/search", Description: "Searches orders."},
		[]model.Property{criteria}, list)

	file := &model.RegularProperty{PropertyBase: model.PropertyBase{Name: "File", Label: "File", Domain: dom("DO_FILE"), Required: true}}
	s.UploadDocument = endpoint(&model.Endpoint{Name: "uploadDocument", Method: "POST", Route: "orders/{orderId}/document", Description: "Attaches a document."},
		[]model.Property{orderIDParam(), file}, nil)

	require.NoError(t, g.CheckInheritance())
	return s
}

// All returns the identifiers of every class of the sample.
func (s *Sample) All() []model.ClassID {
	return model.ClassIDs(s.Graph.Classes())
}
