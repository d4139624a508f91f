// Package resources shapes models into the JSON returned by the API.
package resources

import (
	"time"

	"github.com/reflaxess123/obedi/app/models"
)

// User is the public view of a user. Credentials never leave the server.
type User struct {
	ID        uint                `json:"id"`
	Email     string              `json:"email"`
	Name      string              `json:"name"`
	AvatarURL *string             `json:"avatarUrl"`
	Provider  models.AuthProvider `json:"provider"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

func NewUser(u *models.User) User {
	return User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Provider:  u.Provider,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewUsers(us []models.User) []User {
	out := make([]User, len(us))
	for i := range us {
		out[i] = NewUser(&us[i])
	}
	return out
}

// Image is one lunch picture.
type Image struct {
	ID       uint   `json:"id"`
	LunchID  uint   `json:"lunchId"`
	URL      string `json:"url"`
	Key      string `json:"key"`
	Width    *int   `json:"width"`
	Height   *int   `json:"height"`
	Position int    `json:"position"`
}

func NewImage(img *models.LunchImage) Image {
	return Image{
		ID:       img.ID,
		LunchID:  img.LunchID,
		URL:      img.URL,
		Key:      img.Key,
		Width:    img.Width,
		Height:   img.Height,
		Position: img.Position,
	}
}

// Lunch is a lunch with its images in position order.
type Lunch struct {
	ID          uint               `json:"id"`
	UserID      uint               `json:"userId"`
	Title       string             `json:"title"`
	Recipe      *string            `json:"recipe"`
	Calories    *int               `json:"calories"`
	Proteins    *float64           `json:"proteins"`
	Fats        *float64           `json:"fats"`
	Carbs       *float64           `json:"carbs"`
	CookingTime *int               `json:"cookingTime"`
	Difficulty  *models.Difficulty `json:"difficulty"`
	Tags        []string           `json:"tags"`
	Images      []Image            `json:"images"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func NewLunch(l *models.Lunch) Lunch {
	tags := l.Tags
	if tags == nil {
		tags = []string{}
	}
	images := make([]Image, len(l.Images))
	for i := range l.Images {
		images[i] = NewImage(&l.Images[i])
	}
	return Lunch{
		ID:          l.ID,
		UserID:      l.UserID,
		Title:       l.Title,
		Recipe:      l.Recipe,
		Calories:    l.Calories,
		Proteins:    l.Proteins,
		Fats:        l.Fats,
		Carbs:       l.Carbs,
		CookingTime: l.CookingTime,
		Difficulty:  l.Difficulty,
		Tags:        tags,
		Images:      images,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func NewLunches(ls []models.Lunch) []Lunch {
	out := make([]Lunch, len(ls))
	for i := range ls {
		out[i] = NewLunch(&ls[i])
	}
	return out
}

// Party is the customer or chef of an order.
type Party struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
}

// LunchSummary is the lunch referenced by an order item.
type LunchSummary struct {
	ID    uint    `json:"id"`
	Title string  `json:"title"`
	Image *string `json:"image"`
}

// OrderItem renders a deleted lunch as null.
type OrderItem struct {
	ID    uint          `json:"id"`
	Lunch *LunchSummary `json:"lunch"`
}

// HistoryEntry is one status change.
type HistoryEntry struct {
	ID        uint               `json:"id"`
	OrderID   uint               `json:"orderId"`
	Status    models.OrderStatus `json:"status"`
	Comment   *string            `json:"comment"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Order carries its history newest first.
type Order struct {
	ID        uint               `json:"id"`
	Status    models.OrderStatus `json:"status"`
	Comment   *string            `json:"comment"`
	Customer  Party              `json:"customer"`
	Chef      Party              `json:"chef"`
	Items     []OrderItem        `json:"items"`
	History   []HistoryEntry     `json:"history"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func NewOrder(o *models.Order) Order {
	items := make([]OrderItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItem{ID: it.ID}
		if it.Lunch != nil {
			sum := &LunchSummary{ID: it.Lunch.ID, Title: it.Lunch.Title}
			if len(it.Lunch.Images) > 0 {
				sum.Image = &it.Lunch.Images[0].URL
			}
			items[i].Lunch = sum
		}
	}

	history := make([]HistoryEntry, len(o.History))
	for i, h := range o.History {
		history[i] = HistoryEntry{ID: h.ID, OrderID: h.OrderID, Status: h.Status, Comment: h.Comment, CreatedAt: h.CreatedAt}
	}

	return Order{
		ID:        o.ID,
		Status:    o.Status,
		Comment:   o.Comment,
		Customer:  party(&o.Customer),
		Chef:      party(&o.Chef),
		Items:     items,
		History:   history,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func NewOrders(os []models.Order) []Order {
	out := make([]Order, len(os))
	for i := range os {
		out[i] = NewOrder(&os[i])
	}
	return out
}

func party(u *models.User) Party {
	return Party{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}
