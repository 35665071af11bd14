package main

import (
	"fmt"
	"time"

	"github.com/wheelhub/internal/config"
	"github.com/wheelhub/internal/db"
	"github.com/wheelhub/internal/logger"
	"github.com/wheelhub/internal/service"
	"gorm.io/gorm"
)

type demoVehicle struct {
	Title        string
	TypeTitle    string
	Brand        string
	Seats        int
	Transmission string
	DailyRate    int64
	Description  string
	ImageURL     string
}

var demoVehicleTypes = []service.VehicleTypeInput{
	{Title: "Sedan", Description: "Comfortable four-door cars for city and highway."},
	{Title: "SUV", Description: "Extra space and ground clearance for family trips."},
	{Title: "Van", Description: "Seats for groups and room for luggage."},
	{Title: "Convertible", Description: "Open-top driving for sunny days."},
}

var demoVehicles = []demoVehicle{
	{"Toyota Camry", "Sedan", "Toyota", 5, "automatic", 5500, "Reliable **mid-size** sedan.\n\n- Bluetooth\n- Cruise control", "https://images.example.com/camry.jpg"},
	{"Toyota Camry", "Sedan", "Toyota", 5, "automatic", 5800, "Hybrid trim of the same model.", "https://images.example.com/camry-hybrid.jpg"},
	{"Honda Civic", "Sedan", "Honda", 5, "manual", 4800, "Compact and easy to park.", "https://images.example.com/civic.jpg"},
	{"Ford Explorer", "SUV", "Ford", 7, "automatic", 8900, "Three rows of seats.", "https://images.example.com/explorer.jpg"},
	{"Škoda Kodiaq", "SUV", "Škoda", 7, "automatic", 7900, "Spacious European SUV.", "https://images.example.com/kodiaq.jpg"},
	{"Mercedes-Benz Sprinter", "Van", "Mercedes-Benz", 12, "manual", 12900, "Ideal for team outings.", "https://images.example.com/sprinter.jpg"},
	{"Mazda MX-5", "Convertible", "Mazda", 2, "manual", 9900, "Lightweight roadster.", "https://images.example.com/mx5.jpg"},
}

// 演示数据生成器，所有写入都走 service，slug 由存储层钩子生成。
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("配置加载失败", map[string]interface{}{"error": err.Error()})
	}
	logger.Init(cfg.LogLevel)

	if err := db.Init(db.Options{
		Driver:          cfg.DatabaseDriver,
		Path:            cfg.DatabasePath,
		URL:             cfg.DatabaseURL,
		SlugMaxAttempts: cfg.SlugMaxAttempts,
	}); err != nil {
		logger.Fatal("数据库初始化失败", map[string]interface{}{"error": err.Error()})
	}

	fmt.Println("开始生成演示数据...")
	if err := seed(db.DB, time.Now()); err != nil {
		logger.Fatal("生成演示数据失败", map[string]interface{}{"error": err.Error()})
	}
	fmt.Println("演示数据生成完成！")
}

func seed(gdb *gorm.DB, now time.Time) error {
	var count int64
	if err := gdb.Model(&db.VehicleType{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		fmt.Println("车型已存在，跳过创建")
		return nil
	}

	typeIDs, err := seedVehicleTypes(service.NewVehicleTypeService(gdb))
	if err != nil {
		return err
	}

	vehicles, err := seedVehicles(service.NewVehicleService(gdb), typeIDs)
	if err != nil {
		return err
	}

	// 预订日期以 now 为基准，校验也必须用同一时钟
	bookings := service.NewBookingService(gdb)
	bookings.SetClock(func() time.Time { return now })
	if err := seedBookings(bookings, vehicles, now); err != nil {
		return err
	}

	if err := seedTrackerPurchases(service.NewTrackerPurchaseService(gdb), vehicles, now); err != nil {
		return err
	}

	if _, err := service.NewSystemSettingService(gdb).UpdateSettings(service.SystemSettingsInput{
		SiteName:     "WheelHub Rentals",
		SupportEmail: "support@wheelhub.example",
		SupportPhone: "+1 555 0100",
		Currency:     "USD",
	}); err != nil {
		return err
	}

	fmt.Printf("✅ 车型 %d 个，车辆 %d 辆\n", len(typeIDs), len(vehicles))
	return nil
}

func seedVehicleTypes(svc *service.VehicleTypeService) (map[string]uint, error) {
	ids := make(map[string]uint, len(demoVehicleTypes))
	for _, input := range demoVehicleTypes {
		vt, err := svc.Create(input)
		if err != nil {
			return nil, fmt.Errorf("create vehicle type %q: %w", input.Title, err)
		}
		ids[input.Title] = vt.ID
	}
	return ids, nil
}

func seedVehicles(svc *service.VehicleService, typeIDs map[string]uint) ([]*db.Vehicle, error) {
	created := make([]*db.Vehicle, 0, len(demoVehicles))
	for _, item := range demoVehicles {
		vehicle, err := svc.Create(service.VehicleInput{
			Title:         item.Title,
			VehicleTypeID: typeIDs[item.TypeTitle],
			Brand:         item.Brand,
			Seats:         item.Seats,
			Transmission:  item.Transmission,
			DailyRate:     item.DailyRate,
			Description:   item.Description,
			ImageURL:      item.ImageURL,
			Available:     true,
		})
		if err != nil {
			return nil, fmt.Errorf("create vehicle %q: %w", item.Title, err)
		}
		created = append(created, vehicle)
	}
	return created, nil
}

func seedBookings(svc *service.BookingService, vehicles []*db.Vehicle, now time.Time) error {
	if len(vehicles) < 2 {
		return nil
	}

	start := now.UTC().AddDate(0, 0, 3)
	paid, err := svc.Create(service.BookingInput{
		VehicleID:     vehicles[0].ID,
		CustomerName:  "Demo Customer",
		CustomerEmail: "demo@example.com",
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 2),
	})
	if err != nil {
		return fmt.Errorf("create demo booking: %w", err)
	}
	if _, err := svc.CompletePayment(paid.Reference, "demo-payment"); err != nil {
		return fmt.Errorf("pay demo booking: %w", err)
	}

	if _, err := svc.Create(service.BookingInput{
		VehicleID:     vehicles[1].ID,
		CustomerName:  "Pending Customer",
		CustomerEmail: "pending@example.com",
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 4),
	}); err != nil {
		return fmt.Errorf("create pending booking: %w", err)
	}
	return nil
}

func seedTrackerPurchases(svc *service.TrackerPurchaseService, vehicles []*db.Vehicle, now time.Time) error {
	for i, vehicle := range vehicles {
		vehicleID := vehicle.ID
		status := "installed"
		if i%3 == 2 {
			status = "received"
		}
		if _, err := svc.Create(service.TrackerPurchaseInput{
			DeviceModel: "GT06N",
			Supplier:    "Concox",
			Quantity:    1,
			UnitPrice:   2599,
			Status:      status,
			VehicleID:   &vehicleID,
			PurchasedAt: now.AddDate(0, -1, 0),
		}); err != nil {
			return fmt.Errorf("create tracker purchase: %w", err)
		}
	}
	return nil
}
