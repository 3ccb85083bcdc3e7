package models

// City is a province with its coordinates in (longitude, latitude) order
type City struct {
	Name string  `json:"name"`
	Lon  float64 `json:"lon"`
	Lat  float64 `json:"lat"`
}

// Carriers operating the synthetic schedule
var Carriers = []string{"Metro", "Pamukkale", "Kamil Koç", "Buzlu"}

// Cities lists all 81 provinces served
var Cities = []City{
	{"Adana", 35.3213, 37.0000},
	{"Adıyaman", 38.2786, 37.7648},
	{"Afyonkarahisar", 30.5567, 38.7507},
	{"Ağrı", 43.0503, 39.7191},
	{"Amasya", 35.8353, 40.6499},
	{"Ankara", 32.8541, 39.9208},
	{"Antalya", 30.7056, 36.8841},
	{"Artvin", 41.8183, 41.1828},
	{"Aydın", 27.8416, 37.8560},
	{"Balıkesir", 27.8826, 39.6484},
	{"Bilecik", 30.0665, 40.0567},
	{"Bingöl", 40.7696, 39.0626},
	{"Bitlis", 42.1232, 38.3938},
	{"Bolu", 31.5788, 40.5760},
	{"Burdur", 30.0665, 37.4613},
	{"Bursa", 29.0634, 40.2669},
	{"Çanakkale", 26.4142, 40.1553},
	{"Çankırı", 33.6134, 40.6013},
	{"Çorum", 34.9556, 40.5506},
	{"Denizli", 29.0864, 37.7765},
	{"Diyarbakır", 40.2306, 37.9144},
	{"Edirne", 26.5623, 41.6818},
	{"Elazığ", 39.2264, 38.6810},
	{"Erzincan", 39.5000, 39.7500},
	{"Erzurum", 41.2700, 39.9000},
	{"Eskişehir", 30.5206, 39.7767},
	{"Gaziantep", 37.3833, 37.0662},
	{"Giresun", 38.3895, 40.9128},
	{"Gümüşhane", 39.5086, 40.4386},
	{"Hakkari", 43.7333, 37.5833},
	{"Hatay", 36.3498, 36.4018},
	{"Isparta", 30.5566, 37.7648},
	{"Mersin", 34.6333, 36.8000},
	{"İstanbul", 28.9770, 41.0053},
	{"İzmir", 27.1287, 38.4189},
	{"Kars", 43.1000, 40.6167},
	{"Kastamonu", 33.7827, 41.3887},
	{"Kayseri", 35.4787, 38.7312},
	{"Kırklareli", 27.2167, 41.7333},
	{"Kırşehir", 34.1709, 39.1425},
	{"Kocaeli", 29.8815, 40.8533},
	{"Konya", 32.4833, 37.8667},
	{"Kütahya", 29.9833, 39.4167},
	{"Malatya", 38.3095, 38.3552},
	{"Manisa", 27.4289, 38.6191},
	{"Kahramanmaraş", 36.9371, 37.5858},
	{"Mardin", 40.7245, 37.3212},
	{"Muğla", 28.3636, 37.2153},
	{"Muş", 41.7539, 38.9462},
	{"Nevşehir", 34.6857, 38.6939},
	{"Niğde", 34.6833, 37.9667},
	{"Ordu", 37.8764, 40.9839},
	{"Rize", 40.5234, 41.0201},
	{"Sakarya", 30.4358, 40.6940},
	{"Samsun", 36.3313, 41.2928},
	{"Siirt", 41.9500, 37.9333},
	{"Sinop", 35.1531, 42.0231},
	{"Sivas", 37.0179, 39.7477},
	{"Tekirdağ", 27.5167, 40.9833},
	{"Tokat", 36.5500, 40.3167},
	{"Trabzon", 39.7178, 41.0015},
	{"Tunceli", 39.4388, 39.3074},
	{"Şanlıurfa", 38.7969, 37.1674},
	{"Uşak", 29.4058, 38.6823},
	{"Van", 43.3832, 38.5012},
	{"Yozgat", 34.8086, 39.8181},
	{"Zonguldak", 31.7987, 41.4564},
	{"Aksaray", 34.0254, 38.3687},
	{"Bayburt", 40.2270, 40.2552},
	{"Karaman", 33.2150, 37.1810},
	{"Kırıkkale", 33.5167, 39.8468},
	{"Batman", 41.1322, 37.8812},
	{"Şırnak", 42.4610, 37.5164},
	{"Bartın", 32.3375, 41.5811},
	{"Ardahan", 42.7022, 41.1105},
	{"Iğdır", 44.0440, 39.9237},
	{"Yalova", 29.2769, 40.6500},
	{"Karabük", 32.6278, 41.2061},
	{"Kilis", 37.1150, 36.7161},
	{"Osmaniye", 36.2478, 37.0742},
	{"Düzce", 31.1639, 40.8438},
}

var cityIndex = func() map[string]City {
	idx := make(map[string]City, len(Cities))
	for _, c := range Cities {
		idx[c.Name] = c
	}
	return idx
}()

// LookupCity returns the city with the exact given name
func LookupCity(name string) (City, bool) {
	c, ok := cityIndex[name]
	return c, ok
}

// CityNames returns the names of all cities in table order
func CityNames() []string {
	names := make([]string, len(Cities))
	for i, c := range Cities {
		names[i] = c.Name
	}
	return names
}
