package domain

// PlanSpec is the resource quota behind a purchasable plan key. Read-only;
// memory/disk in MB, cpu in percent. Zeroes mean unlimited (request-based).
type PlanSpec struct {
	Memory int    `json:"memory"`
	Disk   int    `json:"disk"`
	CPU    int    `json:"cpu"`
	Label  string `json:"label"`
}

// PlanSpecFor resolves a plan key to its quota. ok is false for unknown keys.
func PlanSpecFor(planKey string) (PlanSpec, bool) {
	switch planKey {
	case "panel-1gb":
		return PlanSpec{Memory: 1000, Disk: 1000, CPU: 40, Label: "1GB"}, true
	case "panel-2gb":
		return PlanSpec{Memory: 2000, Disk: 1000, CPU: 60, Label: "2GB"}, true
	case "panel-3gb":
		return PlanSpec{Memory: 3000, Disk: 2000, CPU: 80, Label: "3GB"}, true
	case "panel-4gb":
		return PlanSpec{Memory: 4000, Disk: 2000, CPU: 100, Label: "4GB"}, true
	case "panel-5gb":
		return PlanSpec{Memory: 5000, Disk: 3000, CPU: 120, Label: "5GB"}, true
	case "panel-6gb":
		return PlanSpec{Memory: 6000, Disk: 3000, CPU: 140, Label: "6GB"}, true
	case "panel-7gb":
		return PlanSpec{Memory: 7000, Disk: 4000, CPU: 160, Label: "7GB"}, true
	case "panel-8gb":
		return PlanSpec{Memory: 8000, Disk: 4000, CPU: 180, Label: "8GB"}, true
	case "panel-9gb":
		return PlanSpec{Memory: 9000, Disk: 5000, CPU: 200, Label: "9GB"}, true
	case "panel-10gb":
		return PlanSpec{Memory: 10000, Disk: 5000, CPU: 220, Label: "10GB"}, true
	case "panel-unlimited":
		return PlanSpec{Memory: 0, Disk: 0, CPU: 0, Label: "UNLIMITED"}, true
	default:
		return PlanSpec{}, false
	}
}

// Plan is a purchasable storefront entry. Price is in IDR.
type Plan struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	RAMGb int    `json:"ramGb"`
	Price int    `json:"price"`
	Badge string `json:"badge"`
}

type Product struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Plans    []Plan `json:"plans"`
}

var products = []Product{
	{
		Key:      "panel",
		Title:    "Panel Pterodactyl",
		Subtitle: "Pilih RAM sesuai kebutuhan. Unlimited = request-based.",
		Plans: []Plan{
			{Key: "panel-1gb", Label: "1GB", RAMGb: 1, Price: 1500, Badge: "Starter"},
			{Key: "panel-2gb", Label: "2GB", RAMGb: 2, Price: 3000, Badge: "Basic"},
			{Key: "panel-3gb", Label: "3GB", RAMGb: 3, Price: 4500, Badge: "Plus"},
			{Key: "panel-4gb", Label: "4GB", RAMGb: 4, Price: 6000, Badge: "Popular"},
			{Key: "panel-5gb", Label: "5GB", RAMGb: 5, Price: 7500, Badge: "Pro"},
			{Key: "panel-6gb", Label: "6GB", RAMGb: 6, Price: 9000, Badge: "Pro+"},
			{Key: "panel-7gb", Label: "7GB", RAMGb: 7, Price: 10500, Badge: "Ultra"},
			{Key: "panel-8gb", Label: "8GB", RAMGb: 8, Price: 12000, Badge: "Max"},
			{Key: "panel-9gb", Label: "9GB", RAMGb: 9, Price: 13500, Badge: "Max+"},
			{Key: "panel-10gb", Label: "10GB", RAMGb: 10, Price: 15000, Badge: "Extreme"},
			{Key: "panel-unlimited", Label: "UNLIMITED", RAMGb: 0, Price: 16500, Badge: "Request"},
		},
	},
}

func Products() []Product {
	return products
}

// FindPlan looks up a storefront plan by product and plan key.
func FindPlan(productKey, planKey string) (Plan, bool) {
	for _, p := range products {
		if p.Key != productKey {
			continue
		}
		for _, pl := range p.Plans {
			if pl.Key == planKey {
				return pl, true
			}
		}
	}
	return Plan{}, false
}
