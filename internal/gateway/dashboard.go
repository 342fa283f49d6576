package gateway

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tokoadmin/internal/apperrors"
	"tokoadmin/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// dashboardActivities is how many activities the dashboard lists.
const dashboardActivities = 5

// Dashboard renders the HTML pages from the backend services.
type Dashboard struct {
	backend  Backend
	views    *Views
	lg       *zap.SugaredLogger
	validate *validator.Validate
	now      func() time.Time
}

func NewDashboard(backend Backend, views *Views, lg *zap.SugaredLogger) *Dashboard {
	return &Dashboard{
		backend:  backend,
		views:    views,
		lg:       lg,
		validate: validator.New(),
		now:      time.Now,
	}
}

// RegisterRoutes mounts the public pages and, behind gate, the dashboards.
func (d *Dashboard) RegisterRoutes(router fiber.Router, gate fiber.Handler) {
	router.Get("/login", d.HandleLoginPage)
	router.Post("/login", d.HandleLogin)
	router.Get("/register", d.HandleRegisterPage)
	router.Post("/register", d.HandleRegister)
	router.Get("/logout", d.HandleLogout)

	router.Get("/", gate, d.HandleDashboard)

	router.Get("/products", gate, d.HandleProducts)
	router.Get("/products/add", gate, d.HandleAddProductPage)
	router.Post("/products", gate, d.HandleCreateProduct)
	router.Get("/products/edit/:id", gate, d.HandleEditProductPage)
	router.Post("/products/update/:id", gate, d.HandleUpdateProduct)
	router.Post("/products/delete/:id", gate, d.HandleDeleteProduct)
	router.Get("/products/:id", gate, d.HandleProductDetail)

	router.Get("/shipping", gate, d.HandleShipping)
	router.Get("/shipping/add", gate, d.HandleAddShipmentPage)
	router.Post("/shipping", gate, d.HandleCreateShipment)
	router.Post("/shipping/:id/status", gate, d.HandleUpdateShipmentStatus)
	router.Get("/shipping/:id", gate, d.HandleShipmentDetail)

	router.Get("/profile", gate, d.HandleProfilePage)
	router.Post("/profile", gate, d.HandleUpdateProfile)
	router.Get("/settings", gate, d.HandleSettingsPage)
	router.Post("/settings", gate, d.HandleUpdateSettings)
}

type page struct {
	Title    string
	User     *models.UserView
	Settings Settings
	Flashes  []Flash
	Data     fiber.Map
}

func (d *Dashboard) render(c *fiber.Ctx, status int, view, title string, data fiber.Map) error {
	state := StateOf(c)
	p := page{
		Title:    title,
		User:     state.User,
		Settings: state.Settings,
		Flashes:  state.TakeFlashes(),
		Data:     data,
	}

	var buf bytes.Buffer
	if err := d.views.Render(&buf, view, p); err != nil {
		d.lg.Errorw("failed to render view", "view", view, "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}

// renderError shows the error page for a failed backend call.
func (d *Dashboard) renderError(c *fiber.Ctx, err error, msg string) error {
	status := http.StatusBadGateway
	if apperrors.KindOf(err) == apperrors.KindUpstream {
		if s := apperrors.HTTPStatus(err); s >= 400 && s < 500 {
			status = s
			msg = apperrors.Message(err)
		}
	}
	return d.render(c, status, "error", "Error", fiber.Map{"Status": status, "Message": msg})
}

// userMessage is the backend's message for a rejected request and fallback
// when the backend could not be reached.
func userMessage(err error, fallback string) string {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Kind == apperrors.KindUpstream && appErr.Status >= 400 && appErr.Status < 500 {
		return appErr.Message
	}
	return fallback
}

func (d *Dashboard) record(c *fiber.Ctx, kind, desc string) {
	StateOf(c).AddActivity(kind, desc, d.now())
}

func (d *Dashboard) flash(c *fiber.Ctx, kind, text string) {
	StateOf(c).AddFlash(kind, text)
}

func pathID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	return uint(id), err == nil && id > 0
}

// LoginForm is the body of the login form.
type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (d *Dashboard) HandleLoginPage(c *fiber.Ctx) error {
	return d.render(c, fiber.StatusOK, "login", "Login", nil)
}

// HandleLogin exchanges the credentials for a token kept in the session.
func (d *Dashboard) HandleLogin(c *fiber.Ctx) error {
	var form LoginForm
	if err := c.BodyParser(&form); err != nil {
		d.flash(c, FlashError, "Invalid login form")
		return c.Redirect("/login")
	}

	res, err := d.backend.Login(c.UserContext(), form.Email, form.Password)
	if err != nil {
		d.lg.Infow("login failed", "email", form.Email, "error", err)
		d.flash(c, FlashError, userMessage(err, "Login failed"))
		return c.Redirect("/login")
	}

	state := StateOf(c)
	state.SignIn(res.Token, res.User)
	d.record(c, "login", "Logged in")
	return c.Redirect("/")
}

// RegisterForm is the body of the registration form.
type RegisterForm struct {
	Name      string `form:"name"`
	Email     string `form:"email"`
	Password  string `form:"password"`
	Password2 string `form:"password2"`
}

func (d *Dashboard) HandleRegisterPage(c *fiber.Ctx) error {
	return d.render(c, fiber.StatusOK, "register", "Register", nil)
}

func (d *Dashboard) HandleRegister(c *fiber.Ctx) error {
	var form RegisterForm
	if err := c.BodyParser(&form); err != nil {
		d.flash(c, FlashError, "Invalid registration form")
		return c.Redirect("/register")
	}
	if form.Password != form.Password2 {
		d.flash(c, FlashError, "Passwords do not match")
		return c.Redirect("/register")
	}

	res, err := d.backend.Register(c.UserContext(), form.Name, form.Email, form.Password)
	if err != nil {
		d.lg.Infow("registration failed", "email", form.Email, "error", err)
		d.flash(c, FlashError, userMessage(err, "Registration failed"))
		return c.Redirect("/register")
	}

	StateOf(c).SignIn(res.Token, res.User)
	d.record(c, "register", "Registered an account")
	return c.Redirect("/")
}

// HandleLogout records the logout and then destroys the session.
func (d *Dashboard) HandleLogout(c *fiber.Ctx) error {
	d.record(c, "logout", "Logged out")
	DestroySession(c)
	return c.Redirect("/login")
}

// HandleDashboard shows totals over products and shipments. Backend failures
// are logged and shown as zeros.
func (d *Dashboard) HandleDashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	state := StateOf(c)

	products, err := d.backend.ListProducts(ctx)
	if err != nil {
		d.lg.Warnw("dashboard: failed to list products", "error", err)
	}
	shipments, err := d.backend.ListShipments(ctx)
	if err != nil {
		d.lg.Warnw("dashboard: failed to list shipments", "error", err)
	}

	active, revenue := shipmentTotals(products, shipments)

	firstName := ""
	if state.User != nil {
		if fields := strings.Fields(state.User.Name); len(fields) > 0 {
			firstName = fields[0]
		}
	}

	return d.render(c, fiber.StatusOK, "dashboard", "Dashboard", fiber.Map{
		"FirstName":       firstName,
		"TotalProducts":   len(products),
		"ActiveShipments": active,
		"Revenue":         revenue,
		"Activities":      state.RecentActivities(dashboardActivities),
	})
}

// shipmentTotals counts pending and dikirim shipments and sums the price of
// the product of every terkirim shipment.
func shipmentTotals(products []models.Product, shipments []models.Shipment) (int, decimal.Decimal) {
	prices := make(map[uint]decimal.Decimal, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}
	active := 0
	revenue := decimal.Zero
	for _, s := range shipments {
		if s.Status.Active() {
			active++
		}
		if s.Status == models.StatusTerkirim {
			revenue = revenue.Add(prices[s.ProductID])
		}
	}
	return active, revenue
}

// ProductFormInput is the body of the add and edit product forms.
type ProductFormInput struct {
	Name        string `form:"name"`
	Price       string `form:"price"`
	Description string `form:"description"`
}

func (in ProductFormInput) form() ProductForm {
	return ProductForm{
		Name:        strings.TrimSpace(in.Name),
		Price:       strings.TrimSpace(in.Price),
		Description: in.Description,
	}
}

func (d *Dashboard) HandleProducts(c *fiber.Ctx) error {
	products, err := d.backend.ListProducts(c.UserContext())
	if err != nil {
		d.lg.Errorw("failed to list products", "error", err)
		return d.renderError(c, err, "The product service is unavailable, please try again later")
	}
	return d.render(c, fiber.StatusOK, "products", "Products", fiber.Map{
		"Products": products,
		"Message":  c.Query("message"),
	})
}

func (d *Dashboard) HandleAddProductPage(c *fiber.Ctx) error {
	return d.render(c, fiber.StatusOK, "product_form", "Add product", fiber.Map{
		"Action": "/products",
		"Form":   ProductForm{},
	})
}

func (d *Dashboard) HandleCreateProduct(c *fiber.Ctx) error {
	var in ProductFormInput
	if err := c.BodyParser(&in); err != nil {
		d.flash(c, FlashError, "Invalid product form")
		return c.Redirect("/products/add")
	}
	form := in.form()
	if form.Name == "" || form.Price == "" {
		d.flash(c, FlashError, "Product name and price are required")
		return c.Redirect("/products/add")
	}

	if err := d.backend.CreateProduct(c.UserContext(), form); err != nil {
		d.lg.Errorw("failed to create product", "name", form.Name, "error", err)
		d.flash(c, FlashError, userMessage(err, "Failed to add product"))
		return c.Redirect("/products/add")
	}
	d.record(c, "product", fmt.Sprintf("Added product %s", form.Name))
	d.flash(c, FlashSuccess, "Product added successfully")
	return c.Redirect("/products")
}

func (d *Dashboard) HandleProductDetail(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		d.flash(c, FlashError, "Invalid product ID")
		return c.Redirect("/products")
	}
	product, err := d.backend.GetProduct(c.UserContext(), id)
	if err != nil {
		d.lg.Errorw("failed to get product", "id", id, "error", err)
		return d.renderError(c, err, "Failed to load product")
	}
	return d.render(c, fiber.StatusOK, "product_detail", product.Name, fiber.Map{"Product": product})
}

func (d *Dashboard) HandleEditProductPage(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		d.flash(c, FlashError, "Invalid product ID")
		return c.Redirect("/products")
	}
	product, err := d.backend.GetProduct(c.UserContext(), id)
	if err != nil {
		d.lg.Errorw("failed to get product for edit", "id", id, "error", err)
		return d.renderError(c, err, "Failed to load product")
	}
	return d.render(c, fiber.StatusOK, "product_form", "Edit product", fiber.Map{
		"Action": fmt.Sprintf("/products/update/%d", id),
		"Form": ProductForm{
			Name:        product.Name,
			Price:       product.Price.StringFixed(2),
			Description: product.Description,
		},
	})
}

func (d *Dashboard) HandleUpdateProduct(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		d.flash(c, FlashError, "Invalid product ID")
		return c.Redirect("/products")
	}
	editURL := fmt.Sprintf("/products/edit/%d", id)

	var in ProductFormInput
	if err := c.BodyParser(&in); err != nil {
		d.flash(c, FlashError, "Invalid product form")
		return c.Redirect(editURL)
	}
	form := in.form()
	if form.Name == "" || form.Price == "" {
		d.flash(c, FlashError, "Product name and price are required")
		return c.Redirect(editURL)
	}

	if err := d.backend.UpdateProduct(c.UserContext(), id, form); err != nil {
		d.lg.Errorw("failed to update product", "id", id, "error", err)
		d.flash(c, FlashError, userMessage(err, "Failed to update product"))
		return c.Redirect(editURL)
	}
	d.record(c, "product", fmt.Sprintf("Updated product %s", form.Name))
	return c.Redirect("/products?message=Product+updated+successfully")
}

func (d *Dashboard) HandleDeleteProduct(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		d.flash(c, FlashError, "Invalid product ID")
		return c.Redirect("/products")
	}
	if err := d.backend.DeleteProduct(c.UserContext(), id); err != nil {
		d.lg.Errorw("failed to delete product", "id", id, "error", err)
		d.flash(c, FlashError, userMessage(err, "Failed to delete product"))
		return c.Redirect("/products")
	}
	d.record(c, "product", fmt.Sprintf("Deleted product #%d", id))
	return c.Redirect("/products?message=Product+deleted+successfully")
}

// shipmentRow is a shipment with the name of its product.
type shipmentRow struct {
	Shipment    models.Shipment
	ProductName string
}

func (d *Dashboard) HandleShipping(c *fiber.Ctx) error {
	ctx := c.UserContext()
	shipments, err := d.backend.ListShipments(ctx)
	if err != nil {
		d.lg.Errorw("failed to list shipments", "error", err)
		return d.renderError(c, err, "The shipping service is unavailable, please try again later")
	}

	names := map[uint]string{}
	products, err := d.backend.ListProducts(ctx)
	if err != nil {
		d.lg.Warnw("shipping list: failed to list products", "error", err)
	}
	for _, p := range products {
		names[p.ID] = p.Name
	}

	rows := make([]shipmentRow, 0, len(shipments))
	for _, s := range shipments {
		name, ok := names[s.ProductID]
		if !ok {
			name = fmt.Sprintf("Product #%d", s.ProductID)
		}
		rows = append(rows, shipmentRow{Shipment: s, ProductName: name})
	}
	return d.render(c, fiber.StatusOK, "shipping", "Shipping", fiber.Map{"Rows": rows})
}

func (d *Dashboard) HandleAddShipmentPage(c *fiber.Ctx) error {
	products, err := d.backend.ListProducts(c.UserContext())
	if err != nil {
		d.lg.Warnw("shipment form: failed to list products", "error", err)
	}
	return d.render(c, fiber.StatusOK, "shipping_form", "Add shipment", fiber.Map{
		"Products": products,
		"Statuses": models.ShipmentStatuses,
	})
}

// ShipmentFormInput is the body of the add shipment form.
type ShipmentFormInput struct {
	ProductID string `form:"product_id"`
	Address   string `form:"address"`
	Status    string `form:"status"`
}

func (d *Dashboard) HandleCreateShipment(c *fiber.Ctx) error {
	var in ShipmentFormInput
	if err := c.BodyParser(&in); err != nil {
		d.flash(c, FlashError, "Invalid shipment form")
		return c.Redirect("/shipping/add")
	}
	productID, err := strconv.ParseUint(strings.TrimSpace(in.ProductID), 10, 64)
	address := strings.TrimSpace(in.Address)
	if err != nil || productID == 0 || address == "" {
		d.flash(c, FlashError, "All fields are required")
		return c.Redirect("/shipping/add")
	}
	status := models.ShipmentStatus(strings.TrimSpace(in.Status))
	if status == "" {
		status = models.DefaultStatus
	}
	if !status.Valid() {
		d.flash(c, FlashError, "Invalid shipment status")
		return c.Redirect("/shipping/add")
	}

	err = d.backend.CreateShipment(c.UserContext(), ShipmentForm{
		ProductID: uint(productID),
		Address:   address,
		Status:    string(status),
	})
	if err != nil {
		d.lg.Errorw("failed to create shipment", "product_id", productID, "error", err)
		d.flash(c, FlashError, userMessage(err, "Failed to add shipment"))
		return c.Redirect("/shipping/add")
	}
	d.flash(c, FlashSuccess, "Shipment added successfully")
	d.record(c, "shipping", "Added a new shipment")
	return c.Redirect("/shipping")
}

// StatusFormInput is the body of the status form.
type StatusFormInput struct {
	Status string `form:"status"`
}

func (d *Dashboard) HandleUpdateShipmentStatus(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		d.flash(c, FlashError, "Invalid shipment ID")
		return c.Redirect("/shipping")
	}
	detailURL := fmt.Sprintf("/shipping/%d", id)

	var in StatusFormInput
	if err := c.BodyParser(&in); err != nil {
		d.flash(c, FlashError, "Invalid status form")
		return c.Redirect(detailURL)
	}
	status := models.ShipmentStatus(strings.TrimSpace(in.Status))
	if status == "" {
		d.flash(c, FlashError, "Shipment status is required")
		return c.Redirect(detailURL)
	}
	if !status.Valid() {
		d.flash(c, FlashError, fmt.Sprintf("Invalid status, must be one of: %s", strings.Join(models.StatusStrings(), ", ")))
		return c.Redirect(detailURL)
	}

	if err := d.backend.UpdateShipmentStatus(c.UserContext(), id, string(status)); err != nil {
		d.lg.Errorw("failed to update shipment status", "id", id, "error", err)
		d.flash(c, FlashError, userMessage(err, "Failed to update shipment status"))
		return c.Redirect(detailURL)
	}
	d.flash(c, FlashSuccess, fmt.Sprintf("Shipment status changed to: %s", status))
	d.record(c, "shipping", fmt.Sprintf("Changed shipment status to %s", status))
	return c.Redirect(detailURL)
}

func (d *Dashboard) HandleShipmentDetail(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		d.flash(c, FlashError, "Invalid shipment ID")
		return c.Redirect("/shipping")
	}
	ctx := c.UserContext()

	shipment, err := d.backend.GetShipment(ctx, id)
	if err != nil {
		d.lg.Errorw("failed to get shipment", "id", id, "error", err)
		d.flash(c, FlashError, "Failed to load shipment: "+userMessage(err, "service unavailable"))
		return c.Redirect("/shipping")
	}
	product, err := d.backend.GetProduct(ctx, shipment.ProductID)
	if err != nil {
		d.lg.Warnw("shipment detail: failed to get product", "product_id", shipment.ProductID, "error", err)
	}
	return d.render(c, fiber.StatusOK, "shipping_detail", fmt.Sprintf("Shipment #%d", id), fiber.Map{
		"Shipment": shipment,
		"Product":  product,
		"Statuses": models.ShipmentStatuses,
	})
}

func (d *Dashboard) HandleProfilePage(c *fiber.Ctx) error {
	return d.render(c, fiber.StatusOK, "profile", "My profile", nil)
}

// ProfileFormInput is the body of the profile form.
type ProfileFormInput struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

// HandleUpdateProfile sends the change to the auth service with the session
// token and refreshes the user kept in the session.
func (d *Dashboard) HandleUpdateProfile(c *fiber.Ctx) error {
	state := StateOf(c)

	var in ProfileFormInput
	if err := c.BodyParser(&in); err != nil {
		d.flash(c, FlashError, "Invalid profile form")
		return c.Redirect("/profile")
	}

	user, err := d.backend.UpdateProfile(c.UserContext(), state.Token, in.Name, in.Email, in.Password)
	if err != nil {
		d.lg.Infow("profile update failed", "error", err)
		if apperrors.HTTPStatus(err) == fiber.StatusUnauthorized {
			state.SignOut()
			d.flash(c, FlashError, "Your session has expired, please log in again")
			return c.Redirect("/login")
		}
		d.flash(c, FlashError, userMessage(err, "Failed to update profile"))
		return c.Redirect("/profile")
	}
	state.User = user
	d.record(c, "profile", "Updated profile")
	d.flash(c, FlashSuccess, "Profile updated successfully")
	return c.Redirect("/")
}

func (d *Dashboard) HandleSettingsPage(c *fiber.Ctx) error {
	return d.render(c, fiber.StatusOK, "settings", "Settings", nil)
}

// SettingsFormInput is the body of the settings form. An unchecked checkbox
// is absent from the form.
type SettingsFormInput struct {
	Theme string `form:"theme" validate:"oneof=light dark"`
	Notif string `form:"notif"`
}

func (d *Dashboard) HandleUpdateSettings(c *fiber.Ctx) error {
	var in SettingsFormInput
	if err := c.BodyParser(&in); err != nil {
		d.flash(c, FlashError, "Invalid settings form")
		return c.Redirect("/settings")
	}
	if err := d.validate.Struct(in); err != nil {
		d.flash(c, FlashError, "Theme must be light or dark")
		return c.Redirect("/settings")
	}

	state := StateOf(c)
	d.record(c, "settings", "Changed application settings")
	state.Settings = Settings{Theme: in.Theme, Notif: in.Notif != ""}
	d.flash(c, FlashSuccess, "Settings saved")
	return c.Redirect("/")
}
