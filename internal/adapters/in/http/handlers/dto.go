// internal/adapters/in/http/handlers/dto.go
package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	cartdom "storefront/internal/domain/cart"
	categorydom "storefront/internal/domain/category"
	commentdom "storefront/internal/domain/comment"
	orderdom "storefront/internal/domain/order"
	paymentdom "storefront/internal/domain/payment"
	productdom "storefront/internal/domain/product"
	userdom "storefront/internal/domain/user"
)

// 金額は小数第2位固定の文字列で返す（"19.90"）
func money(d decimal.Decimal) string { return d.StringFixed(2) }

// ========================================
// product / category
// ========================================

type productView struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Slug          string    `json:"slug"`
	Price         string    `json:"price"`
	Stock         int       `json:"stock"`
	IsActive      bool      `json:"is_active"`
	Category      string    `json:"category"`
	CategoryTitle string    `json:"category_title,omitempty"`
	Image         string    `json:"image"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toProductView(p productdom.Product) productView {
	return productView{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Slug:          p.Slug,
		Price:         money(p.Price),
		Stock:         p.Stock,
		IsActive:      p.IsActive,
		Category:      p.CategoryID,
		CategoryTitle: p.CategoryTitle,
		Image:         p.ImageURL,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

type categoryView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

func toCategoryView(c categorydom.Category) categoryView {
	return categoryView{ID: c.ID, Title: c.Title, Slug: c.Slug, Description: c.Description, IsActive: c.IsActive}
}

type categoryDetailView struct {
	categoryView
	Products []productView `json:"products"`
}

// ========================================
// comment
// ========================================

type commentView struct {
	ID           string    `json:"id"`
	Product      string    `json:"product"`
	ProductTitle string    `json:"product_title"`
	User         string    `json:"user"`
	Rating       int       `json:"rating"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toCommentView(c commentdom.Comment) commentView {
	return commentView{
		ID:           c.ID,
		Product:      c.ProductID,
		ProductTitle: c.ProductTitle,
		User:         c.Username,
		Rating:       c.Rating,
		Text:         c.Text,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ========================================
// cart
// ========================================

type cartProductView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price string `json:"price"`
}

type cartLineView struct {
	ID        string          `json:"id"`
	Product   cartProductView `json:"product"`
	Quantity  int             `json:"quantity"`
	ItemTotal string          `json:"item_total"`
}

type cartView struct {
	ID        string         `json:"id"`
	User      string         `json:"user"`
	Items     []cartLineView `json:"items"`
	CartTotal string         `json:"cart_total"`
}

func toCartView(c cartdom.Cart, username string) cartView {
	items := make([]cartLineView, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, cartLineView{
			ID:        l.ID,
			Product:   cartProductView{ID: l.ProductID, Title: l.ProductTitle, Price: money(l.UnitPrice)},
			Quantity:  l.Quantity,
			ItemTotal: money(l.ItemTotal()),
		})
	}
	return cartView{ID: c.ID, User: username, Items: items, CartTotal: money(c.Total())}
}

// ========================================
// order / payment
// ========================================

type addressBody struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2"`
	City        string `json:"city"`
	District    string `json:"district"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
}

func (b addressBody) toDomain() orderdom.Address {
	return orderdom.Address(b)
}

type orderProductView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    string `json:"price"`
	Image    string `json:"image"`
	Category string `json:"category"`
}

type orderItemView struct {
	ID       string            `json:"id"`
	Product  *orderProductView `json:"product"`
	Quantity int               `json:"quantity"`
	Price    string            `json:"price"`
}

type orderView struct {
	ID              string          `json:"id"`
	User            string          `json:"user"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Status          string          `json:"status"`
	PaymentMethod   string          `json:"payment_method"`
	OrderTotal      string          `json:"order_total"`
	Items           []orderItemView `json:"items"`
	DeliveryAddress addressBody     `json:"delivery_address"`
}

func toOrderView(o orderdom.Order) orderView {
	items := make([]orderItemView, 0, len(o.Items))
	for _, it := range o.Items {
		v := orderItemView{ID: it.ID, Quantity: it.Quantity, Price: money(it.Price)}
		if it.Product != nil {
			v.Product = &orderProductView{
				ID:       it.Product.ID,
				Title:    it.Product.Title,
				Price:    money(it.Product.Price),
				Image:    it.Product.ImageURL,
				Category: it.Product.CategoryTitle,
			}
		}
		items = append(items, v)
	}
	return orderView{
		ID:              o.ID,
		User:            o.Username,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Status:          string(o.Status),
		PaymentMethod:   o.PaymentMethod,
		OrderTotal:      money(o.Total),
		Items:           items,
		DeliveryAddress: addressBody(o.Address),
	}
}

type receiptView struct {
	Status    string `json:"status"`
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Amount    string `json:"amount"`
	Method    string `json:"method"`
	Message   string `json:"message"`
}

func toReceiptView(r paymentdom.Receipt) receiptView {
	return receiptView{
		Status:    r.Status,
		PaymentID: r.PaymentID,
		OrderID:   r.OrderID,
		Amount:    money(r.Amount),
		Method:    r.Method,
		Message:   r.Message,
	}
}

// ========================================
// user
// ========================================

type userView struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func toUserView(u userdom.User) userView {
	return userView{ID: u.ID, Username: u.Username, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}
