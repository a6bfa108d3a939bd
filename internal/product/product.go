package product

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Product is a catalog entry stored in the products collection. Category
// refers to a category by name.
type Product struct {
	ID       int     `json:"id" csv:"id" validate:"gt=0"`
	Name     string  `json:"name" csv:"name"`
	Category string  `json:"category" csv:"category"`
	Image    string  `json:"image" csv:"image"`
	MRP      float64 `json:"mrp" csv:"mrp"`
	Price    float64 `json:"price" csv:"price"`
	Unit     string  `json:"unit" csv:"unit"`
	Stock    int     `json:"stock" csv:"stock"`
	Status   string  `json:"status" csv:"status"`
}

// Patch carries the fields of a partial update; nil fields are left alone.
type Patch struct {
	Name     *string  `json:"name"`
	Category *string  `json:"category"`
	Image    *string  `json:"image"`
	MRP      *float64 `json:"mrp"`
	Price    *float64 `json:"price"`
	Unit     *string  `json:"unit"`
	Stock    *int     `json:"stock"`
	Status   *string  `json:"status"`
}

func (p Patch) apply(to Product) Product {
	if p.Name != nil {
		to.Name = *p.Name
	}
	if p.Category != nil {
		to.Category = *p.Category
	}
	if p.Image != nil {
		to.Image = *p.Image
	}
	if p.MRP != nil {
		to.MRP = *p.MRP
	}
	if p.Price != nil {
		to.Price = *p.Price
	}
	if p.Unit != nil {
		to.Unit = *p.Unit
	}
	if p.Stock != nil {
		to.Stock = *p.Stock
	}
	if p.Status != nil {
		to.Status = *p.Status
	}
	return to
}

// Form is the admin product form. Its rules apply when the form is submitted,
// not to products already stored.
type Form struct {
	Name     string  `json:"name" validate:"required"`
	Category string  `json:"category" validate:"required"`
	Image    string  `json:"image" validate:"omitempty,url"`
	MRP      float64 `json:"mrp" validate:"gt=0"`
	Price    float64 `json:"price" validate:"gt=0,ltefield=MRP"`
	Unit     string  `json:"unit" validate:"required"`
	Stock    int     `json:"stock" validate:"gte=0"`
	Status   string  `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

func (f Form) Product() Product {
	return Product{
		Name:     f.Name,
		Category: f.Category,
		Image:    f.Image,
		MRP:      f.MRP,
		Price:    f.Price,
		Unit:     f.Unit,
		Stock:    f.Stock,
		Status:   f.Status,
	}
}

func (f Form) Patch() Patch {
	p := Patch{
		Name:     &f.Name,
		Category: &f.Category,
		Image:    &f.Image,
		MRP:      &f.MRP,
		Price:    &f.Price,
		Unit:     &f.Unit,
		Stock:    &f.Stock,
	}
	if f.Status != "" {
		p.Status = &f.Status
	}
	return p
}

// StockLine is one ordered line consumed from stock.
type StockLine struct {
	ProductID int
	Quantity  int
}

// DefaultProducts is the catalog seeded into an empty store.
var DefaultProducts = []Product{
	{ID: 1, Name: "Fresh Tomatoes", Category: "Fruits & Vegetables", Image: "/images/products/tomatoes.jpg", MRP: 40, Price: 32, Unit: "1 kg", Stock: 50, Status: StatusActive},
	{ID: 2, Name: "Bananas", Category: "Fruits & Vegetables", Image: "/images/products/bananas.jpg", MRP: 60, Price: 48, Unit: "1 dozen", Stock: 40, Status: StatusActive},
	{ID: 3, Name: "Onions", Category: "Fruits & Vegetables", Image: "/images/products/onions.jpg", MRP: 35, Price: 30, Unit: "1 kg", Stock: 80, Status: StatusActive},
	{ID: 4, Name: "Toned Milk", Category: "Dairy & Bakery", Image: "/images/products/milk.jpg", MRP: 30, Price: 28, Unit: "500 ml", Stock: 60, Status: StatusActive},
	{ID: 5, Name: "Brown Bread", Category: "Dairy & Bakery", Image: "/images/products/bread.jpg", MRP: 45, Price: 40, Unit: "400 g", Stock: 25, Status: StatusActive},
	{ID: 6, Name: "Paneer", Category: "Dairy & Bakery", Image: "/images/products/paneer.jpg", MRP: 95, Price: 85, Unit: "200 g", Stock: 20, Status: StatusActive},
	{ID: 7, Name: "Basmati Rice", Category: "Staples", Image: "/images/products/rice.jpg", MRP: 180, Price: 149, Unit: "1 kg", Stock: 35, Status: StatusActive},
	{ID: 8, Name: "Toor Dal", Category: "Staples", Image: "/images/products/dal.jpg", MRP: 160, Price: 139, Unit: "1 kg", Stock: 30, Status: StatusActive},
	{ID: 9, Name: "Potato Chips", Category: "Snacks & Beverages", Image: "/images/products/chips.jpg", MRP: 20, Price: 20, Unit: "52 g", Stock: 100, Status: StatusActive},
	{ID: 10, Name: "Orange Juice", Category: "Snacks & Beverages", Image: "/images/products/juice.jpg", MRP: 120, Price: 99, Unit: "1 L", Stock: 18, Status: StatusActive},
	{ID: 11, Name: "Herbal Shampoo", Category: "Personal Care", Image: "/images/products/shampoo.jpg", MRP: 250, Price: 199, Unit: "340 ml", Stock: 15, Status: StatusActive},
	{ID: 12, Name: "Dishwash Liquid", Category: "Household", Image: "/images/products/dishwash.jpg", MRP: 110, Price: 95, Unit: "500 ml", Stock: 22, Status: StatusActive},
}
