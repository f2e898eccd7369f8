package ingest

// defaultCSV is the base dataset served when no upload is available.
const defaultCSV = `Data,Receita_Total,Custos_Operacionais,Novos_Clientes,Carteira_Credito_Ativa,Valor_Inadimplente
2022-01-31,30500,18200,8,150000,4500
2022-02-28,31200,18500,9,155000,4800
2022-03-31,33000,19000,10,162000,4700
2022-04-30,32500,19100,9,168000,5100
2022-05-31,34800,19500,11,175000,5000
2022-06-30,36000,20000,12,183000,5500
2022-07-31,35500,20200,11,190000,5800
2022-08-31,37200,20500,13,198000,6000
2022-09-30,38000,21000,14,205000,6100
2022-10-31,39500,21500,15,215000,6500
2022-11-30,41000,22000,16,225000,6800
2022-12-31,45000,23000,18,240000,7000
2023-01-31,42000,22500,15,245000,7200
2023-02-28,43500,22800,16,252000,7500
2023-03-31,46000,23500,17,260000,7700
2023-04-30,45500,23800,16,268000,8000
2023-05-31,48200,24000,19,278000,8100
2023-06-30,50000,24500,20,290000,8500
2023-07-31,49000,24800,18,298000,8800
2023-08-31,51500,25000,21,310000,9000
2023-09-30,53000,25500,22,320000,9200
2023-10-31,55000,26000,23,335000,9500
2023-11-30,57000,26500,25,350000,9800
2023-12-31,62000,27500,28,370000,10000
`

// DefaultCSV returns a copy of the embedded base dataset.
func DefaultCSV() []byte {
	return []byte(defaultCSV)
}
