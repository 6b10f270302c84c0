package database

// Menu catalog queries
const (
	SelectMenuSQL = `
		SELECT id, name, description, price::text, category, image, flavors
		FROM menu_items ORDER BY id`

	SelectMenuItemSQL = `
		SELECT id, name, description, price::text, category, image, flavors
		FROM menu_items WHERE id = $1`

	InsertMenuItemSQL = `
		INSERT INTO menu_items (name, description, price, category, image, flavors)
		VALUES ($1, $2, $3::numeric, $4, $5, $6)
		RETURNING id`

	UpdateMenuItemSQL = `
		UPDATE menu_items
		SET name = $2, description = $3, price = $4::numeric, category = $5, image = $6, flavors = $7
		WHERE id = $1`

	DeleteMenuItemSQL = `DELETE FROM menu_items WHERE id = $1`
)

// Order log queries. Order items live as a denormalized JSONB snapshot
// on the order row; there is no foreign key back to menu_items.
const (
	InsertOrderSQL = `
		INSERT INTO orders (id, customer_name, customer_phone, customer_email, customer_address,
			items, total, status, delivery_type, payment_method, observations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10, $11, $12)`

	SelectOrdersSQL = `
		SELECT id, customer_name, customer_phone, customer_email, customer_address,
			items, total::text, status, delivery_type, payment_method, observations, created_at
		FROM orders ORDER BY created_at DESC, id DESC`

	SelectOrderSQL = `
		SELECT id, customer_name, customer_phone, customer_email, customer_address,
			items, total::text, status, delivery_type, payment_method, observations, created_at
		FROM orders WHERE id = $1`

	SelectOrderStatusSQL = `SELECT status FROM orders WHERE id = $1`

	// The expected-status predicate is the optimistic check: of two
	// racing transitions only one matches and updates a row.
	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $2 WHERE id = $1 AND status = $3`
)
