package service

import (
	"testing"

	"go-inventory-bom/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRawProduct(t *testing.T) {
	env := newTestEnv(t)

	product, err := env.ledger.CreateProduct(&CreateProductRequest{
		OwnerID:      env.ownerID,
		Kind:         model.KindRaw,
		Name:         "Bottle Cap",
		Manufacturer: "CapCo",
		Stock:        1000,
	}, "tester")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, product.ID)
	assert.Equal(t, model.KindRaw, product.Kind)
	assert.Equal(t, 1000.0, product.Stock)
}

func TestCreateReadyProductDeductsIngredients(t *testing.T) {
	env := newTestEnv(t)
	bottleCap := env.createRawMaterial(t, "Bottle Cap", 1000)
	sugar := env.createRawMaterial(t, "Sugar", 500)

	product, err := env.ledger.CreateProduct(&CreateProductRequest{
		OwnerID:      env.ownerID,
		Kind:         model.KindReady,
		Name:         "Juice 500ml",
		Manufacturer: "JuiceCo",
		Stock:        10,
		Ingredients: []IngredientRequest{
			{Material: bottleCap.ID, Quantity: 2},
			{Material: sugar.ID, Quantity: 0.5},
		},
	}, "tester")
	require.NoError(t, err)

	// required = quantity per unit * units stocked
	assert.Equal(t, 980.0, env.materialStock(t, bottleCap.ID))
	assert.Equal(t, 495.0, env.materialStock(t, sugar.ID))
	assert.Len(t, product.Ingredients, 2)

	// Each deduction leaves an OUT movement pointing back at the composite
	movements, err := env.moves.FindByOwner(env.ownerID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, model.MoveOut, m.Type)
		require.NotNil(t, m.RefProductID)
		assert.Equal(t, product.ID, *m.RefProductID)
	}
}

func TestCreateReadyProductInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	bottleCap := env.createRawMaterial(t, "Bottle Cap", 15)
	before := env.productCount(t)

	_, err := env.ledger.CreateProduct(&CreateProductRequest{
		OwnerID:      env.ownerID,
		Kind:         model.KindReady,
		Name:         "Juice 500ml",
		Manufacturer: "JuiceCo",
		Stock:        10,
		Ingredients:  []IngredientRequest{{Material: bottleCap.ID, Quantity: 2}},
	}, "tester")

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, bottleCap.ID, insufficient.MaterialID)
	assert.Equal(t, "Bottle Cap", insufficient.MaterialName)
	assert.Equal(t, 20.0, insufficient.Required)
	assert.Equal(t, 15.0, insufficient.Available)

	// Whole transaction rolled back: no product row, stock untouched
	assert.Equal(t, before, env.productCount(t))
	assert.Equal(t, 15.0, env.materialStock(t, bottleCap.ID))
}

func TestCreateReadyProductAbortsMidList(t *testing.T) {
	env := newTestEnv(t)
	flour := env.createRawMaterial(t, "Flour", 100)
	yeast := env.createRawMaterial(t, "Yeast", 1)
	before := env.productCount(t)

	_, err := env.ledger.CreateProduct(&CreateProductRequest{
		OwnerID:      env.ownerID,
		Kind:         model.KindReady,
		Name:         "Bread",
		Manufacturer: "Bakery",
		Stock:        5,
		Ingredients: []IngredientRequest{
			{Material: flour.ID, Quantity: 10}, // satisfiable
			{Material: yeast.ID, Quantity: 1},  // not satisfiable
		},
	}, "tester")

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, yeast.ID, insufficient.MaterialID)

	// The satisfiable ingredient earlier in the list must not stay deducted
	assert.Equal(t, 100.0, env.materialStock(t, flour.ID))
	assert.Equal(t, 1.0, env.materialStock(t, yeast.ID))
	assert.Equal(t, before, env.productCount(t))
}

func TestCreateReadyProductMaterialNotFound(t *testing.T) {
	env := newTestEnv(t)
	missing := uuid.New()
	before := env.productCount(t)

	_, err := env.ledger.CreateProduct(&CreateProductRequest{
		OwnerID:      env.ownerID,
		Kind:         model.KindReady,
		Name:         "Mystery Mix",
		Manufacturer: "Nowhere",
		Stock:        1,
		Ingredients:  []IngredientRequest{{Material: missing, Quantity: 1}},
	}, "tester")

	var notFound *MaterialNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, missing, notFound.MaterialID)
	assert.Equal(t, before, env.productCount(t))
}

func TestCompositeProductIsNotAnIngredientSource(t *testing.T) {
	env := newTestEnv(t)
	bottleCap := env.createRawMaterial(t, "Bottle Cap", 100)

	ready, err := env.ledger.CreateProduct(&CreateProductRequest{
		OwnerID:      env.ownerID,
		Kind:         model.KindReady,
		Name:         "Juice",
		Manufacturer: "JuiceCo",
		Stock:        1,
		Ingredients:  []IngredientRequest{{Material: bottleCap.ID, Quantity: 1}},
	}, "tester")
	require.NoError(t, err)

	// Referencing a ready product as a material resolves to not-found
	_, err = env.ledger.CreateProduct(&CreateProductRequest{
		OwnerID:      env.ownerID,
		Kind:         model.KindReady,
		Name:         "Juice Crate",
		Manufacturer: "JuiceCo",
		Stock:        1,
		Ingredients:  []IngredientRequest{{Material: ready.ID, Quantity: 1}},
	}, "tester")

	var notFound *MaterialNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestMaterialOwnedByAnotherAccountNotResolvable(t *testing.T) {
	env := newTestEnv(t)

	foreign := &model.Product{
		OwnerID:      uuid.New(),
		Kind:         model.KindRaw,
		Name:         "Foreign Cap",
		Manufacturer: "Acme",
		Stock:        100,
	}
	require.NoError(t, env.products.Create(env.db, foreign))

	_, err := env.ledger.CreateProduct(&CreateProductRequest{
		OwnerID:      env.ownerID,
		Kind:         model.KindReady,
		Name:         "Juice",
		Manufacturer: "JuiceCo",
		Stock:        1,
		Ingredients:  []IngredientRequest{{Material: foreign.ID, Quantity: 1}},
	}, "tester")

	var notFound *MaterialNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 100.0, env.materialStock(t, foreign.ID))
}

func TestDuplicateIngredientsAggregateBeforeDeduction(t *testing.T) {
	env := newTestEnv(t)
	a := env.createRawMaterial(t, "Material A", 8)

	// Two lines of the same material with stock=5 need 10 in total; naive
	// line-by-line deduction would drive stock to -2 instead of failing.
	_, err := env.ledger.CreateProduct(&CreateProductRequest{
		OwnerID:      env.ownerID,
		Kind:         model.KindReady,
		Name:         "Doubled",
		Manufacturer: "Acme",
		Stock:        5,
		Ingredients: []IngredientRequest{
			{Material: a.ID, Quantity: 1},
			{Material: a.ID, Quantity: 1},
		},
	}, "tester")

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 10.0, insufficient.Required)
	assert.Equal(t, 8.0, insufficient.Available)
	assert.Equal(t, 8.0, env.materialStock(t, a.ID))
}

func TestDuplicateIngredientsDeductCombinedOnce(t *testing.T) {
	env := newTestEnv(t)
	a := env.createRawMaterial(t, "Material A", 10)

	_, err := env.ledger.CreateProduct(&CreateProductRequest{
		OwnerID:      env.ownerID,
		Kind:         model.KindReady,
		Name:         "Doubled",
		Manufacturer: "Acme",
		Stock:        3,
		Ingredients: []IngredientRequest{
			{Material: a.ID, Quantity: 1},
			{Material: a.ID, Quantity: 1},
		},
	}, "tester")
	require.NoError(t, err)

	assert.Equal(t, 4.0, env.materialStock(t, a.ID))

	// One merged requirement means one movement row
	movements, err := env.moves.FindByOwner(env.ownerID)
	require.NoError(t, err)
	assert.Len(t, movements, 1)
	assert.Equal(t, 6.0, movements[0].Quantity)
}

func TestSequentialCreationsSeeEarlierDeduction(t *testing.T) {
	env := newTestEnv(t)
	a := env.createRawMaterial(t, "Material A", 10)

	createWidget := func() error {
		_, err := env.ledger.CreateProduct(&CreateProductRequest{
			OwnerID:      env.ownerID,
			Kind:         model.KindReady,
			Name:         "Widget",
			Manufacturer: "Acme",
			Stock:        4,
			Ingredients:  []IngredientRequest{{Material: a.ID, Quantity: 2}},
		}, "tester")
		return err
	}

	require.NoError(t, createWidget()) // 10 - 8 = 2

	err := createWidget() // needs 8, only 2 left
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 2.0, insufficient.Available)
	assert.Equal(t, 2.0, env.materialStock(t, a.ID))
}

func TestCreateProductValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		req  CreateProductRequest
	}{
		{"missing name", CreateProductRequest{OwnerID: env.ownerID, Kind: model.KindRaw, Manufacturer: "Acme", Stock: 1}},
		{"missing manufacturer", CreateProductRequest{OwnerID: env.ownerID, Kind: model.KindRaw, Name: "X", Stock: 1}},
		{"negative stock", CreateProductRequest{OwnerID: env.ownerID, Kind: model.KindRaw, Name: "X", Manufacturer: "Acme", Stock: -1}},
		{"bad kind", CreateProductRequest{OwnerID: env.ownerID, Kind: "frozen", Name: "X", Manufacturer: "Acme", Stock: 1}},
		{"missing owner", CreateProductRequest{Kind: model.KindRaw, Name: "X", Manufacturer: "Acme", Stock: 1}},
		{"negative ingredient quantity", CreateProductRequest{
			OwnerID: env.ownerID, Kind: model.KindReady, Name: "X", Manufacturer: "Acme", Stock: 1,
			Ingredients: []IngredientRequest{{Material: uuid.New(), Quantity: -1}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := env.productCount(t)
			_, err := env.ledger.CreateProduct(&tc.req, "tester")

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, before, env.productCount(t))
		})
	}
}

func TestCreateReadyProductEmptyIngredients(t *testing.T) {
	env := newTestEnv(t)

	product, err := env.ledger.CreateProduct(&CreateProductRequest{
		OwnerID:      env.ownerID,
		Kind:         model.KindReady,
		Name:         "Handmade",
		Manufacturer: "Atelier",
		Stock:        5,
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, 5.0, product.Stock)
	assert.Empty(t, product.Ingredients)
}

func TestAggregateRequirements(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	reqs := aggregateRequirements([]IngredientRequest{
		{Material: a, Quantity: 2},
		{Material: b, Quantity: 1.5},
		{Material: a, Quantity: 0.5},
	}, 4)

	require.Len(t, reqs, 2)
	// first-seen order is preserved
	assert.Equal(t, a, reqs[0].MaterialID)
	assert.Equal(t, 10.0, reqs[0].Required) // (2 + 0.5) * 4
	assert.Equal(t, b, reqs[1].MaterialID)
	assert.Equal(t, 6.0, reqs[1].Required)
}
