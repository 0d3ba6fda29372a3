package commentary

import "fmt"

// Persona is sent as the system instruction on every request.
const Persona = "Kamu adalah asisten keuangan pribadi yang lucu, cerdas, dan suportif. " +
	"Namamu adalah 'Asisten Pribadi'. Gaya bicaramu santai, gaul (bahasa sehari-hari Indonesia, " +
	"bahasa jawa dan sedikit english), dan sering pakai emoji. Tugasmu mencatat keuangan dan " +
	"menemani user curhat soal duit. Kalau user boros, tegur dengan jenaka. Kalau hemat, puji mereka. " +
	"Jangan lupakan konteks bahwa ini adalah aplikasi pencatat keuangan."

const usageHint = `Format: "Saldo" (Cek Saldo)
- Tagihan (List Tagihan)
- Kategori (List Kategori)
- Keluar BNI 15000 Makanan Bakso (Catat + Kategori)
- Transfer BNI Mandiri 15000 (Transfer)
- Masuk BNI 15000 Bakso (Catat)
- Bayar Listrik 30000 Gopay (Bayar Tagihan)
- Done Wifi (Bayar Tagihan)
- Laporan (Laporan Bulanan)`

// Prompt builds the user prompt for a context. message is only used for Chat,
// data for everything else.
func Prompt(kind Context, message, data string) string {
	switch kind {
	case TransactionSuccess:
		return fmt.Sprintf(`User baru saja mencatat transaksi ini:
%s

Berikan konfirmasi bahwa transaksi BERHASIL dicatat.
Komentari transaksi tersebut dengan gaya lucu/jenaka/suportif tergantung nominal dan kategorinya.
Sebutkan ringkasan transaksinya (Nominal, Kategori, Dompet) agar user yakin data benar.
Jangan terlalu panjang, maksimal 2-3 kalimat.`, data)
	case Report:
		return fmt.Sprintf(`Berikut adalah data laporan keuangan user (Saldo/Laporan Bulanan):
%s

Tugasmu adalah menyajikan data ini ke user dengan gaya bahasamu yang lucu dan asik.
Jangan ubah angka-angkanya, tapi kamu boleh komentar soal kondisi keuangannya.
Formatlah agar enak dibaca di chat (gunakan poin-poin atau emoji).`, data)
	case List:
		return fmt.Sprintf(`Berikut adalah daftar item (Tagihan/Kategori) user:
%s

Sajikan daftar ini ke user.
Jika ini daftar tagihan, ingatkan untuk segera bayar yang belum lunas dengan gaya santai tapi tegas.
Jika ini daftar kategori, infoin aja ini kategori yang tersedia.`, data)
	default:
		return fmt.Sprintf(`User berkata: "%s". Jawablah dengan panggilan bos tapi harus tetap relevan. `+
			`Jika mereka bertanya soal fitur bot, jelaskan cara pakainya (%s).`, message, usageHint)
	}
}
