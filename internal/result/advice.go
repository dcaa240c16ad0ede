package result

import (
	"math/rand"
	"sync"
	"time"
)

var adviceList = []string{
	"Sebaik-baik kalian adalah orang yang belajar Al-Qur'an dan mengajarkannya. (HR. Bukhari)",
	"Bacalah Al-Qur'an, sesungguhnya ia akan datang pada hari kiamat memberikan syafaat bagi pembacanya. (HR. Muslim)",
	"Hati yang tidak ada sedikitpun Al-Qur'an di dalamnya bagaikan rumah yang roboh. (HR. Tirmidzi)",
	"Orang yang mahir membaca Al-Qur'an akan bersama para malaikat yang mulia dan taat. (HR. Muslim)",
	"Allah mengangkat derajat beberapa kaum dengan Al-Qur'an ini dan merendahkan yang lain dengannya. (HR. Muslim)",
	"Jadikanlah Al-Quran sebagai pedoman hidup, niscaya hidupmu akan terarah dan tenang.",
	"Jangan lupa untuk murojaah hafalanmu, karena ilmu yang tidak dijaga akan mudah hilang.",
	"Menghafal Al-Quran itu mudah bagi yang ikhlas, jagalah niatmu karena Allah.",
	"Satu huruf yang dibaca dari Al-Quran mengandung sepuluh kebaikan.",
	"Al-Quran adalah obat bagi hati yang gelisah dan penyejuk bagi jiwa yang gundah.",
	"Jangan menunggu waktu luang untuk membaca Al-Quran, tapi luangkanlah waktumu.",
	"Keindahan Al-Quran bukan hanya pada suaranya, tapi pada pengamalannya dalam kehidupan sehari-hari.",
	"Rumah yang dibacakan Al-Quran akan dihadiri malaikat dan dijauhi setan.",
	"Istiqomah dalam membaca Al-Quran lebih baik daripada seribu karomah.",
	"Barangsiapa yang membaca satu huruf dari Kitabullah, maka dia akan mendapat satu kebaikan, dan satu kebaikan itu dibalas dengan sepuluh kali lipatnya. (HR. Tirmidzi)",
	"Penghafal Al-Quran adalah keluarga Allah di bumi.",
	"Cahaya Al-Quran mampu menerangi kegelapan hati dan pikiran.",
	"Semakin dekat kita dengan Al-Quran, semakin dekat kita dengan kebahagiaan.",
	"Al-Quran adalah surat cinta dari Allah, bacalah dengan penuh kasih sayang.",
	"Tidak ada kata terlambat untuk mulai belajar membaca dan memahami Al-Quran.",
	"Ilmu itu didapat dengan belajar, dan keberkahan didapat dengan Al-Quran.",
	"Hiasilah suaramu dengan Al-Quran.",
	"Al-Quran itu pemberi syafaat yang syafaatnya diterima.",
	"Orang yang dalam hatinya tidak ada Al-Quran laksana rumah kosong.",
	"Bersabarlah dalam menuntut ilmu Al-Quran, karena buahnya manis di akhirat.",
}

// AdviceList returns a copy of the static advice strings.
func AdviceList() []string {
	return append([]string(nil), adviceList...)
}

// Advisor picks advice uniformly at random. Safe for concurrent use.
type Advisor struct {
	mu   sync.Mutex
	rnd  *rand.Rand
	list []string
}

func NewAdvisor(rnd *rand.Rand) *Advisor {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Advisor{rnd: rnd, list: adviceList}
}

// Pick returns one advice string.
func (a *Advisor) Pick() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.list[a.rnd.Intn(len(a.list))]
}
