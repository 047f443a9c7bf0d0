package typescript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelgen/compiler/domain"
	"github.com/syssam/modelgen/compiler/gen"
	"github.com/syssam/modelgen/compiler/internal/modeltest"
)

func render(t *testing.T, tasks []gen.Task, path string) string {
	t.Helper()
	for _, task := range tasks {
		if task.Path == path {
			out, err := task.Render()
			require.NoError(t, err)
			return string(out)
		}
	}
	require.Failf(t, "missing file", "no task for %s", path)
	return ""
}

func paths(tasks []gen.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Path
	}
	return out
}

func TestGenerator(t *testing.T) {
	g := New(Options{APIRoot: "api"})
	assert.Equal(t, "typescript", g.Name())
	assert.Equal(t, domain.TargetTS, g.DomainTarget())

	s := modeltest.NewSample(t)
	tasks, err := g.Tasks(gen.NewContext(s.Graph, gen.DefaultConfig()))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"model/sales/orders/order-line.ts",
		"model/sales/orders/order.ts",
		"model/sales/orders/order-search.ts",
		"model/sales/references.ts",
		"api/sales/orders/order-api.ts",
	}, paths(tasks))

	t.Run("typed definition", func(t *testing.T) {
		out := render(t, tasks, "model/sales/orders/order.ts")
		assert.Contains(t, out, "// Code generated by modelgen. DO NOT EDIT.\n\n")
		assert.Contains(t, out, `import {DO_AMOUNT, DO_CODE, DO_DATE, DO_ID, DO_ID_LIST, DO_LIBELLE} from "../../../domains";
import {StatusCode} from "../references";
import {EntityToType, FieldEntry2} from "@focus4/stores";
`)
		assert.Contains(t, out, "export type Order = EntityToType<OrderEntityType>;\nexport interface OrderEntityType {\n")
		assert.Contains(t, out, "    orderId: FieldEntry2<typeof DO_ID, number>;\n")
		assert.Contains(t, out, "    status: FieldEntry2<typeof DO_CODE, StatusCode>;\n")
		assert.Contains(t, out, "    orderLines: FieldEntry2<typeof DO_ID_LIST, number[]>;\n")
		assert.Contains(t, out, "    createdAt: FieldEntry2<typeof DO_DATE, string>;\n")
		assert.Contains(t, out, `export const OrderEntity: OrderEntityType = {
    orderId: {
        type: "field",
        name: "orderId",
        domain: DO_ID,
        isRequired: false,
        label: "Id"
    },
`)
		assert.Contains(t, out, "        isRequired: true,\n        label: \"Status\"\n")
	})

	t.Run("compositions and aliases", func(t *testing.T) {
		out := render(t, tasks, "model/sales/orders/order-search.ts")
		assert.Contains(t, out, `import {OrderLineEntity, OrderLineEntityType} from "./order-line";`)
		assert.Contains(t, out, `import {EntityToType, FieldEntry2, ListEntry} from "@focus4/stores";`)
		assert.Contains(t, out, "    label: FieldEntry2<typeof DO_LIBELLE, string>;\n")
		assert.Contains(t, out, "    statuses: FieldEntry2<typeof DO_CODE_LIST, StatusCode[]>;\n")
		assert.Contains(t, out, "    lines: ListEntry<OrderLineEntityType>;\n")
		assert.Contains(t, out, "    lines: {\n        type: \"list\",\n        entity: OrderLineEntity\n    }\n};")
	})

	t.Run("reverse association in scope", func(t *testing.T) {
		out := render(t, tasks, "model/sales/orders/order-line.ts")
		assert.Contains(t, out, "    order: FieldEntry2<typeof DO_ID, number>;\n")
	})

	t.Run("references", func(t *testing.T) {
		out := render(t, tasks, "model/sales/references.ts")
		assert.Contains(t, out, `export interface Country {
    countryCode: string;
}
export const country = {type: {} as Country, valueKey: "countryCode", labelKey: "countryCode"} as const;

export type StatusCode = "ACTIVE" | "CLOSED";
export interface Status {
    code: StatusCode;
    label: string;
}
export const status = {type: {} as Status, valueKey: "code", labelKey: "label"} as const;
`)
		assert.NotContains(t, out, "import")
	})

	t.Run("api client", func(t *testing.T) {
		out := render(t, tasks, "api/sales/orders/order-api.ts")
		assert.Contains(t, out, `import {Order} from "../../../model/sales/orders/order";
import {OrderSearch} from "../../../model/sales/orders/order-search";
import {fetch} from "@focus4/core";
`)
		assert.Contains(t, out, "export function getOrder(orderId: number, options: RequestInit = {}): Promise<Order> {\n    return fetch(\"GET\", `./orders/${orderId}`, {}, options);\n}")
		assert.Contains(t, out, "export function searchOrders(criteria: OrderSearch, options: RequestInit = {}): Promise<Order[]> {\n    return fetch(\"POST\", `./orders/search`, {body: criteria}, options);\n}")
		assert.Contains(t, out, `export function uploadDocument(orderId: number, file: File, options: RequestInit = {}): Promise<void> {
    const body = new FormData();
    if (file !== undefined) {
        body.append("file", file);
    }
    return fetch("POST", `+"`./orders/${orderId}/document`"+`, {body}, options);
}`)
		assert.Contains(t, out, " * Loads an order.\n * @param orderId Id.\n * @param options Fetch options.\n */")
	})
}

func TestModes(t *testing.T) {
	s := modeltest.NewSample(t)

	t.Run("plain interfaces", func(t *testing.T) {
		tasks, err := New(Options{Mode: Plain}).Tasks(gen.NewContext(s.Graph, gen.DefaultConfig()))
		require.NoError(t, err)
		out := render(t, tasks, "model/sales/orders/order-search.ts")
		assert.Contains(t, out, `import {OrderLine} from "./order-line";`)
		assert.Contains(t, out, "export interface OrderSearch {\n    label?: string;\n    statuses?: StatusCode[];\n    lines?: OrderLine[];\n}\n")
		assert.NotContains(t, out, "Entity")
	})

	t.Run("untyped entities", func(t *testing.T) {
		tasks, err := New(Options{Mode: Untyped, DomainPath: "@app/domains"}).Tasks(gen.NewContext(s.Graph, gen.DefaultConfig()))
		require.NoError(t, err)
		out := render(t, tasks, "model/sales/orders/order.ts")
		assert.Contains(t, out, `from "@app/domains";`)
		assert.Contains(t, out, "export const OrderEntity = {\n")
		assert.Contains(t, out, "} as const;\n")
	})

	t.Run("translated labels and comments", func(t *testing.T) {
		tasks, err := New(Options{TranslateProperties: true, Comments: true}).Tasks(gen.NewContext(s.Graph, gen.DefaultConfig()))
		require.NoError(t, err)
		out := render(t, tasks, "model/sales/orders/order.ts")
		assert.Contains(t, out, "        label: \"sales.orders.order.label\",\n        comment: \"comments.sales.orders.order.label\"\n")
		assert.Contains(t, out, "        label: \"common.audited.createdAt\",\n")
	})

	t.Run("reference values", func(t *testing.T) {
		tasks, err := New(Options{References: Values}).Tasks(gen.NewContext(s.Graph, gen.DefaultConfig()))
		require.NoError(t, err)
		out := render(t, tasks, "model/sales/references.ts")
		assert.Contains(t, out, "export const statusList: Status[] = [\n    {code: \"ACTIVE\", label: \"Active\"},\n    {code: \"CLOSED\", label: \"Closed\"},\n];\n")
	})

	t.Run("tag scope disables out of scope enums", func(t *testing.T) {
		tasks, err := New(Options{}).Tasks(gen.NewContext(s.Graph, gen.DefaultConfig(), "front"))
		require.NoError(t, err)
		assert.Equal(t, []string{"model/sales/orders/order-search.ts"}, paths(tasks))
		out := render(t, tasks, "model/sales/orders/order-search.ts")
		assert.Contains(t, out, "    statuses: FieldEntry2<typeof DO_CODE_LIST, string[]>;\n")
		assert.NotContains(t, out, "references")
	})

	t.Run("references feature disabled", func(t *testing.T) {
		cfg := gen.MustNewConfig(gen.WithoutFeatures(gen.FeatureTSReferences.Name))
		tasks, err := New(Options{}).Tasks(gen.NewContext(s.Graph, cfg))
		require.NoError(t, err)
		assert.Contains(t, paths(tasks), "model/sales/status.ts")
		assert.NotContains(t, paths(tasks), "model/sales/references.ts")
		out := render(t, tasks, "model/sales/orders/order.ts")
		assert.Contains(t, out, "    status: FieldEntry2<typeof DO_CODE, string>;\n")
	})
}
