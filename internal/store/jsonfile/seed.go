package jsonfile

import (
	"github.com/shopspring/decimal"

	"el-sabor/internal/models"
)

func p(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// seedMenu is written to menu.json the first time the store starts
// with an empty data directory.
var seedMenu = []models.MenuItem{
	{
		ID:          1,
		Name:        "Hambúrguer Clássico",
		Description: "Pão, carne, queijo, alface, tomate e molho especial.",
		Price:       p("25.50"),
		Category:    "Hambúrgueres",
		Image:       "https://picsum.photos/id/1060/400/300",
		Flavors:     []string{"Bovino", "Frango", "Vegetariano"},
	},
	{
		ID:          2,
		Name:        "Hambúrguer Duplo Bacon",
		Description: "Pão, duas carnes, dobro de bacon, queijo cheddar e barbecue.",
		Price:       p("32.00"),
		Category:    "Hambúrgueres",
		Image:       "https://picsum.photos/id/312/400/300",
		Flavors:     []string{"Bovino", "Frango"},
	},
	{
		ID:          3,
		Name:        "Pizza Margherita",
		Description: "Molho de tomate, mussarela fresca e manjericão.",
		Price:       p("45.00"),
		Category:    "Pizzas",
		Image:       "https://picsum.photos/id/292/400/300",
		Flavors:     []string{"Tamanho P", "Tamanho M", "Tamanho G"},
	},
	{
		ID:          4,
		Name:        "Pizza Calabresa",
		Description: "Molho de tomate, mussarela, calabresa e cebola.",
		Price:       p("48.50"),
		Category:    "Pizzas",
		Image:       "https://picsum.photos/id/102/400/300",
		Flavors:     []string{"Tamanho P", "Tamanho M", "Tamanho G"},
	},
	{
		ID:          5,
		Name:        "Batata Frita",
		Description: "Porção generosa de batatas fritas crocantes.",
		Price:       p("15.00"),
		Category:    "Acompanhamentos",
		Image:       "https://picsum.photos/id/1084/400/300",
		Flavors:     []string{"Pequena", "Média", "Grande"},
	},
	{
		ID:          6,
		Name:        "Refrigerante Lata",
		Description: "Coca-Cola, Guaraná ou Soda.",
		Price:       p("6.00"),
		Category:    "Bebidas",
		Image:       "https://picsum.photos/id/119/400/300",
		Flavors:     []string{"Coca-Cola", "Guaraná", "Soda"},
	},
}
