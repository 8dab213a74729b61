package memstore

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeMC777/vnb-store/internal/apperr"
	"github.com/MikeMC777/vnb-store/internal/product"
)

type Products struct{ s *Store }

func (r *Products) Create(_ context.Context, p *product.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Normalize()
	if _, ok := r.s.st.categories[p.CategoryID]; !ok {
		return product.ErrCategoryNotFound
	}
	for _, cur := range r.s.st.products {
		if cur.ID == p.ID || cur.Slug == p.Slug || cur.SKU == p.SKU {
			return product.ErrAlreadyExist
		}
	}
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	r.s.st.products[p.ID] = *p
	return nil
}

func (r *Products) GetByID(_ context.Context, id string) (*product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.st.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (r *Products) GetBySlug(_ context.Context, slug string) (*product.Detail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.st.products {
		if p.Slug != slug || !p.IsActive {
			continue
		}
		a := r.s.st.attach[p.ID]
		d := &product.Detail{
			Product:  p,
			Category: r.s.st.categories[p.CategoryID],
			Images:   append([]product.Image{}, a.images...),
			Colors:   append([]product.Color{}, a.colors...),
			Sizes:    append([]product.Size{}, a.sizes...),
			Details:  append([]string{}, a.details...),
		}
		slices.SortStableFunc(d.Images, func(x, y product.Image) int { return x.Position - y.Position })
		return d, nil
	}
	return nil, product.ErrNotFound
}

func (r *Products) List(_ context.Context, q product.Query) ([]product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q = q.Normalize()
	needle := strings.ToLower(q.Q)
	out := []product.Product{}
	for _, p := range r.s.st.products {
		c, ok := r.s.st.categories[p.CategoryID]
		if !p.IsActive || !ok || !c.IsActive {
			continue
		}
		if q.CategorySlug != "" && c.Slug != q.CategorySlug {
			continue
		}
		if q.Featured != nil && p.IsFeatured != *q.Featured {
			continue
		}
		if needle != "" && !containsAny(needle, p.Name, p.Description, p.SKU) {
			continue
		}
		out = append(out, p)
	}
	slices.SortFunc(out, compareProducts(q.Ordering))
	return page(out, q.Limit, q.Offset), nil
}

func containsAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func compareProducts(ordering string) func(a, b product.Product) int {
	desc := strings.HasPrefix(ordering, "-")
	field := strings.TrimPrefix(ordering, "-")
	return func(a, b product.Product) int {
		var c int
		switch field {
		case "price":
			c = a.Price.Cmp(b.Price)
		case "name":
			c = strings.Compare(a.Name, b.Name)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if desc {
			return -c
		}
		return c
	}
}

func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return []T{}
	}
	end := offset + limit
	if end > len(in) {
		end = len(in)
	}
	return in[offset:end]
}

func (r *Products) Update(_ context.Context, p *product.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.st.products[p.ID]
	if !ok {
		return product.ErrNotFound
	}
	cur.Name = p.Name
	cur.Description = p.Description
	cur.Price = p.Price
	cur.StockQuantity = p.StockQuantity
	cur.IsActive = p.IsActive
	cur.IsFeatured = p.IsFeatured
	cur.ImageURL = p.ImageURL
	cur.UpdatedAt = r.s.now()
	r.s.st.products[p.ID] = cur
	return nil
}

// Delete mirrors the foreign keys: cart lines go, order lines keep their
// snapshot but lose the product reference.
func (r *Products) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.st.products[id]; !ok {
		return false, nil
	}
	delete(r.s.st.products, id)
	delete(r.s.st.attach, id)
	for k, it := range r.s.st.items {
		if it.ProductID == id {
			delete(r.s.st.items, k)
		}
	}
	for oid, items := range r.s.st.orderItems {
		for i := range items {
			if items[i].ProductID == id {
				items[i].ProductID = ""
			}
		}
		r.s.st.orderItems[oid] = items
	}
	return true, nil
}

func (r *Products) CreateCategory(_ context.Context, c *product.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Slug == "" {
		c.Slug = product.Slugify(c.Name)
	}
	for _, cur := range r.s.st.categories {
		if cur.Name == c.Name || cur.Slug == c.Slug {
			return apperr.New(apperr.ErrConflict, "category already exists")
		}
	}
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	r.s.st.categories[c.ID] = *c
	return nil
}

func (r *Products) ListCategories(_ context.Context, search string) ([]product.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	out := []product.Category{}
	for _, c := range r.s.st.categories {
		if !c.IsActive {
			continue
		}
		if needle != "" && !containsAny(needle, c.Name, c.Description) {
			continue
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b product.Category) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *Products) GetCategory(_ context.Context, slug string) (*product.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.st.categories {
		if c.Slug == slug && c.IsActive {
			return &c, nil
		}
	}
	return nil, product.ErrCategoryNotFound
}

// SetAttachments replaces the images, colors, sizes and detail lines of a
// product. Attachments are managed outside the API, so only seeding and
// tests write them.
func (r *Products) SetAttachments(productID string, images []product.Image, colors []product.Color, sizes []product.Size, details []string) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range images {
		if images[i].ID == "" {
			images[i].ID = uuid.NewString()
		}
	}
	r.s.st.attach[productID] = attachments{
		images:  slices.Clone(images),
		colors:  slices.Clone(colors),
		sizes:   slices.Clone(sizes),
		details: slices.Clone(details),
	}
}
